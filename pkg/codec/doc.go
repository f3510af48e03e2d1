/*
Package codec imports and exports diagrams as JSON, YAML or MessagePack.

Export writes the domain model as-is. Import is best effort: the document is
first decoded generically, then every entity, connection and note is decoded
on its own. Entries missing required fields are skipped and reported as
warnings; derived fields (sizes, strokes, ids) are recomputed when absent.
Only a document that cannot be decoded at all is an error.
*/
package codec
