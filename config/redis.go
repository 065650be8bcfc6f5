package config

import "fmt"

// Redis 仅在 idempotency.driver = redis 时使用
type Redis struct {
	Address  string `json:"address" yaml:"address"`
	Port     int    `json:"port" yaml:"port"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	Database int    `json:"database" yaml:"database"`
}

func (r *Redis) Addr() string {
	return fmt.Sprintf("%s:%d", r.Address, r.Port)
}
