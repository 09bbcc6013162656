// Package logger expone un logger zap global con scoping por contexto.
//
// Inicialización (una vez, en el comando serve):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "authflow"})
//	defer logger.Sync()
//
// En controllers/services:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("TokenService.Exchange"))
//	log.Info("tokens issued", logger.ClientID(clientID), logger.GrantType(gt))
//
// Nunca loguear secretos: codes, access/refresh tokens, client secrets ni API keys.
package logger
