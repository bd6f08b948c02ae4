/*
Package dsl provides a Go DSL for programmatically constructing Statescript graphs.

It builds the same serialized graphs the editor saves, using a fluent builder
instead of JSON or YAML documents. This is useful for generated graphs and
unit tests.

Example usage:

	b := dsl.New("low-health").Variable("dealt", variant.KindFloat32)

	b.Entry("entry").Go("low")
	b.Condition("low", nodes.TypeExpression).
		Bind(0, resolver.Compare(resolver.Attr("Vitals", "Health"), resolver.LessThan,
			resolver.NewConstant(variant.Float32(50)))).
		True("hit").
		False("exit")
	b.Action("hit", nodes.TypeDealDamage).
		With("amount", 12.5).
		Output(0, "dealt").
		Go("exit")
	b.Exit("exit")

	g, err := b.Build()
*/
package dsl
