package redis

import "fmt"

// Key prefix for all trackquiz data
const keyPrefix = "trackquiz"

// stateKey returns the Redis key for an OAuth state token
func stateKey(state string) string {
	return fmt.Sprintf("%s:oauth_state:%s", keyPrefix, state)
}

// sessionKey returns the Redis key for a session record
func sessionKey(id string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}
