// Command abac-engine is a thin external collaborator that wires the
// decision engine's core together for local exercise: it loads
// configuration, boots the stores and services, optionally seeds
// bootstrap attributes and policies, and serves the decision API.
package main

import "github.com/abac-gate/engine/cmd/abac-engine/cmd"

func main() {
	cmd.Execute()
}
