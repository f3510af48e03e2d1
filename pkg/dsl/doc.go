/*
Package dsl provides a Go DSL for programmatically constructing sequence diagrams.

It builds the same domain.Diagram the text parser produces, using a fluent
builder instead of diagram text. This is useful for generated diagrams, unit
tests and exporting a model back to text.

Example usage:

	package main

	import (
		"fmt"

		"github.com/aretw0/seqflow/pkg/domain"
		"github.com/aretw0/seqflow/pkg/dsl"
	)

	func main() {
		b := dsl.New()

		b.Add("U").As(domain.KindActor).Named("User")
		b.Add("API").
			Activate().
			Send("DB", "query")
		b.Add("U").Send("API", "login")
		b.Add("DB").Reply("API", "rows")

		d, err := b.Build()
		if err != nil {
			panic(err)
		}
		fmt.Print(dsl.Format(d))
	}
*/
package dsl
