// Package domain holds the core entities of the account layer: the user as
// known to the credential store and the session the store issues.
package domain
