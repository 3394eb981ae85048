// Package tabular flattens nested JSON responses into rows and columns.
//
// # Overview
//
// Government APIs answer with deeply nested documents: an IBGE municipality
// carries its micro-region, meso-region, state and macro-region as nested
// objects. [Flatten] turns such trees into a [Table] whose columns are the
// dotted paths of the leaves:
//
//	[{"id": 1100015, "microrregiao": {"id": 11006, "nome": "Cacoal"}}]
//
// becomes
//
//	id       microrregiao.id  microrregiao.nome
//	1100015  11006            Cacoal
//
// [FlattenJSON] decodes raw bytes first and can select a subtree with a
// JSONPath expression ("$.resultados[*].series"), and [Of] flattens any
// JSON-marshalable Go value.
//
// # Filtering and Reshaping
//
// Tables are immutable in practice: [Table.Filter], [Table.Where],
// [Table.Select], [Table.Rename] and [Table.Pivot] return new tables.
//
// # Output
//
// [Table.Write] renders CSV, JSON, YAML or aligned plain text.
package tabular
