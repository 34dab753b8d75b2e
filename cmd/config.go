package main

import "time"

type Config struct {
	BufferSize           int           `env:"BUFFER_SIZE,default=256"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	FilesDirectory       string        `env:"FILES_DIRECTORY,default=data/docs"`
	MessageRetention     time.Duration `env:"MESSAGE_RETENTION,default=168h"`
	AllowedOrigins       []string      `env:"ALLOWED_ORIGINS"`
	LogLevel             string        `env:"LOG_LEVEL,default=info"`
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
}
