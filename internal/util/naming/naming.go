// Package naming provides consistent naming for the cloud resources and
// local artifacts belonging to one VPN gateway session.
//
// All resources follow the pattern {session}-{type} so that delete can
// resolve them by name convention alone, without persisted state.
package naming

import "fmt"

func KeyPair(session string) string {
	return fmt.Sprintf("%s-key", session)
}

// KeyFile is the local private key artifact correlated with the session's
// key pair identifier.
func KeyFile(session string) string {
	return fmt.Sprintf("%s-key.pem", session)
}

func SecurityGroup(session string) string {
	return fmt.Sprintf("%s-sg", session)
}

func Instance(session string) string {
	return fmt.Sprintf("%s-server", session)
}
