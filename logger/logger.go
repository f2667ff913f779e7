package logger

import (
	"go.uber.org/zap"
)

type Config struct {
	Development bool
}

// New builds a sugared zap logger. Development mode logs human readable
// output at debug level; otherwise JSON at info level.
func New(cfg Config) (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if cfg.Development {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}
