package logging

import (
	"sync"

	"go.uber.org/zap"
)

var (
	log  *zap.Logger
	once sync.Once
)

// Init builds the process logger. Production config for anything but "dev".
func Init(env string) {
	once.Do(func() {
		var err error
		if env == "dev" {
			log, err = zap.NewDevelopment()
		} else {
			log, err = zap.NewProduction()
		}
		if err != nil {
			panic(err)
		}
	})
}

func L() *zap.Logger {
	if log == nil {
		Init("dev")
	}
	return log
}

func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}
