// Dev scratch: scaffold a throwaway workspace and drive the engine end
// to end through the SDK.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"softloop/internal/engine"
	"softloop/internal/scaffold"
	softloopsdk "softloop/sdk/go"
)

func main() {
	workspace, err := os.MkdirTemp("", "softloop-check")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(workspace)

	params := scaffold.Params{
		Project:     "softloop-check",
		Description: "scratch workspace",
		FirstPhase:  "Core",
		Agent:       "checkcfg",
		Date:        time.Now().Format("2006-01-02"),
	}
	if err := scaffold.Ensure(workspace, params, false); err != nil {
		panic(err)
	}

	client, err := softloopsdk.New(workspace)
	if err != nil {
		panic(err)
	}
	ctx := context.Background()

	snap, err := client.Status(ctx)
	if err != nil {
		panic(err)
	}
	dump("snapshot", snap)

	if _, err := client.Handoff(ctx, engine.HandoffOptions{
		Summary: "scratch run",
		Note:    "nothing to hand off",
	}); err != nil {
		panic(err)
	}
	session, err := client.LastSession(ctx)
	if err != nil {
		panic(err)
	}
	dump("session", session)

	res, err := client.Checkpoint(ctx, 0)
	if err != nil {
		panic(err)
	}
	dump("checkpoint", res)
}

func dump(label string, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Printf("--- %s ---\n%s\n", label, b)
}
