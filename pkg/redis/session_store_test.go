package redis

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestSessionStoreKey(t *testing.T) {
	c := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer c.Close()

	tests := []struct {
		name   string
		prefix string
		userID uint
		want   string
	}{
		{"default prefix", "", 7, "shop:token:7"},
		{"custom prefix", "app:", 42, "app:42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSessionStore(c, tt.prefix, time.Hour)
			assert.Equal(t, tt.want, s.Key(tt.userID))
		})
	}
}
