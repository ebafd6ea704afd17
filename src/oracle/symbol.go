// Package oracle runs elm-oracle and decodes what it says.
//
// The oracle is given a source file and the prefix being typed, is run from the root of
// the project the file belongs to, and prints a single line of JSON describing every symbol
// in scope that matches the prefix.
package oracle

// A Symbol is one record from the oracle's response.
type Symbol struct {
	Name      string `json:"name"`
	FullName  string `json:"fullName"`
	Signature string `json:"signature"`
	Comment   string `json:"comment"`
	Href      string `json:"href"`
}
