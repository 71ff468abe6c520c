package utils

import (
	"go.uber.org/zap"
)

// NewLogger returns a JSON production logger for APP_ENV=production and a
// colourless development logger otherwise.
func NewLogger(appEnv string) (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if appEnv == "production" {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}
