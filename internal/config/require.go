package config

import "fmt"

// RequireSecret fails when a secret setting is unset.
func RequireSecret(value []byte, envName string) error {
	if len(value) == 0 {
		return fmt.Errorf("missing required env %s", envName)
	}
	return nil
}
