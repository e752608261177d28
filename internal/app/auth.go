package app

import (
	"report-router/internal/auth"
	"report-router/internal/common/logging"
)

func (app *App) initializeAuth() {
	var revoker auth.Revoker
	if app.RedisClient != nil {
		revoker = auth.NewRedisRevoker(app.RedisClient)
	}

	app.Auth = auth.New(app.Config.JWTSecret, revoker, logging.GetGlobalLogger())
	if app.Auth.Enabled() {
		app.Logger.Info("Bearer tokens: enabled", logging.Field{Key: "revocation", Value: revoker != nil})
	} else {
		app.Logger.Info("Bearer tokens: disabled (all requests act as system)")
	}
}
