// Package partdex embeds the partdex fastener search engine in a Go process.
//
// The client talks to the catalog database directly and wires the same search,
// recommendation and health services the HTTP API uses. A Redis cache and an
// OpenAI-compatible language model are optional.
//
//	client, err := partdex.New(ctx,
//	    partdex.WithPostgres("postgres://localhost/partdex"),
//	    partdex.WithRedis("localhost:6379", ""),
//	    partdex.WithOpenAI(os.Getenv("OPENAI_API_KEY"), "gpt-4", ""),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close(ctx)
//
//	res, _ := client.Search(ctx, partdex.Query{
//	    Text:    "m8 hex bolt",
//	    Filters: partdex.Filters{Material: []string{"Stainless Steel"}},
//	})
//
// Errors wrap the sentinels in this package; use errors.Is to check them.
package partdex
