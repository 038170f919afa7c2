package tokens

import (
	"os"
	"strings"
)

// EnvToken is the environment variable consulted when no token is passed
// explicitly.
const EnvToken = "IEX_TOKEN"

func FromEnv() string {
	return os.Getenv(EnvToken)
}

// IsSecret reports whether the token is a secret key. Sandbox secret keys
// carry a T prefix and are only accepted when allowSandbox is set.
func IsSecret(token string, allowSandbox bool) bool {
	if strings.HasPrefix(token, "sk") {
		return true
	}
	return allowSandbox && strings.HasPrefix(token, "Tsk")
}

// IsPublishable reports whether the token is a publishable key.
func IsPublishable(token string) bool {
	for _, prefix := range []string{"pk", "Tpk"} {
		if strings.HasPrefix(token, prefix) {
			return true
		}
	}
	return false
}
