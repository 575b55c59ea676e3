// Package schema holds the component catalogue: every component type a
// generator may emit, the props each type accepts, and which child types it
// may contain. The catalogue is serialised into generation prompts and used at
// render time to coerce and validate untyped props.
package schema
