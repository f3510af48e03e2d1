/*
Package ports defines the driven ports (interfaces) of the seqflow engine.

These interfaces decouple the parser and the animation engine from the
surfaces that draw diagrams and the backends that keep them.

# Key Interfaces

  - Renderer: draws a diagram and applies highlight and flow commands.
  - DiagramStore: persists parsed diagrams (memory, Redis, file).
  - DiagramSource: a read-only library of diagram documents (e.g. Loam).
  - Animator: the engine surface consumed by adapters (HTTP, MCP, CLI).
*/
package ports
