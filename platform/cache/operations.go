package cache

import (
	"github.com/gomodule/redigo/redis"
)

func HSet(conn redis.Conn, key, field string, value interface{}) error {
	_, err := conn.Do("HSET", key, field, value)
	return err
}

func HDel(conn redis.Conn, key, field string) error {
	_, err := conn.Do("HDEL", key, field)
	return err
}

// HGetAll returns the full hash as field -> value.
func HGetAll(conn redis.Conn, key string) (map[string]string, error) {
	return redis.StringMap(conn.Do("HGETALL", key))
}
