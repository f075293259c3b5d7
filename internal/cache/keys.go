package cache

import "fmt"

const (
	BlacklistKeyPrefix = "blacklist:%s"
)

// BlacklistKey is the key marking a revoked session id.
func BlacklistKey(jti string) string {
	return fmt.Sprintf(BlacklistKeyPrefix, jti)
}
