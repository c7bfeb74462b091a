package drizzle

import (
	"regexp"

	"github.com/leapstack-labs/drizzleport/pkg/ast"
)

// providerClient describes how a datasource provider is wired up.
type providerClient struct {
	imports []string
	client  string // constructor called with the connection url
	drizzle string // drizzle initializer wrapping the client
}

// providers is the allow-list of datasource providers, keyed by the raw
// provider expression as written in the schema.
var providers = map[string]providerClient{
	`"postgresql"`: {
		imports: []string{
			`import postgres from "postgres";`,
			`import { drizzle as pgDrizzle } from "drizzle-orm/postgres-js";`,
		},
		client:  "postgres",
		drizzle: "pgDrizzle",
	},
}

var envCall = regexp.MustCompile(`env\(\s*("(?:[^"\\]|\\.)*")\s*\)`)

// connectionURL rewrites env("NAME") into a runtime process.env lookup.
func connectionURL(url string) string {
	return envCall.ReplaceAllString(url, `process.env[$1]!`)
}

// dataSources renders one client per datasource and returns the provider
// imports they need, deduplicated in first-use order.
func (g *generator) dataSources() (clients []string, imports []string, err error) {
	seen := make(map[string]bool)
	for _, ds := range g.schema.DataSources.Values() {
		pc, ok := providers[ds.Provider]
		if !ok {
			return nil, nil, &UnsupportedProviderError{DataSource: ds.Name, Provider: ds.Provider}
		}
		if ds.URL == "" {
			return nil, nil, &MissingURLError{DataSource: ds.Name}
		}
		for _, imp := range pc.imports {
			if !seen[imp] {
				seen[imp] = true
				imports = append(imports, imp)
			}
		}
		clients = append(clients, client(ds, pc))
	}
	return clients, imports, nil
}

func client(ds *ast.DataSource, pc providerClient) string {
	return "export const " + ds.Name + "Client = " + pc.client + "(" + connectionURL(ds.URL) + ");\n" +
		"export const " + ds.Name + " = " + pc.drizzle + "(" + ds.Name + "Client);"
}
