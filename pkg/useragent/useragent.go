// Package useragent builds the User-Agent dokkaebi identifies itself with.
package useragent

import (
	"fmt"
	"runtime"

	"github.com/elex-project/dokkaebi/pkg/version"
)

// Product is the product token of the User-Agent header.
const Product = "Dokkaebi"

// Header is the default User-Agent, e.g. "Dokkaebi/1.2.0 (linux; amd64)".
var Header = New(version.Version)

// New returns a User-Agent for the given library version.
func New(v string) string {
	return fmt.Sprintf("%s/%s (%s; %s)", Product, v, runtime.GOOS, runtime.GOARCH)
}
