/*
Package domain contains the core domain model of seqflow.

It defines the entities parsed out of a sequence-diagram description, the
directed connections between them and the diagram that owns both. The package
is kept free of I/O and persistence concerns so the parser, the flow graph and
the animation runtime can share it without pulling adapters along.

# Key Entities

  - Entity: a diagram participant (actor, participant, database, ...) with a box.
  - Connection: a directed, labeled message between two entities, or a command
    marker (activate/deactivate) that targets a single entity.
  - Diagram: the ordered entities, records and notes produced by one parse.
  - Stroke: the resting visual style of a connection, derived from its marker.
*/
package domain
