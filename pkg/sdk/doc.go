// Package answerdex provides an embedded Go client for the answerdex
// document-backed question answering service.
//
// The client owns a local SQLite document store and runs answer fusion
// in-process against a caller-supplied reader:
//
//	client, _ := answerdex.New(ctx,
//	    answerdex.WithDatabase("answers.db"),
//	    answerdex.WithReader(myReader),
//	)
//	defer client.Close()
//
//	_ = client.Documents().Write(ctx, []answerdex.Record{
//	    {"text": "Berlin is the capital of Germany.", "tags": map[string]any{"topic": "geo"}},
//	})
//	res, _ := client.Ask(ctx, "What is the capital of Germany?", answerdex.AskParams{})
package answerdex
