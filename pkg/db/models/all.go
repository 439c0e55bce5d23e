package models

// All lists every persisted model in dependency order. SQLite-backed tests and
// local runs migrate from this list; Postgres uses the goose migrations.
func All() []any {
	return []any{
		&User{},
		&AgentCategory{},
		&Agent{},
		&UserSubscription{},
		&AgentConfiguration{},
		&ProviderCategory{},
		&Brand{},
		&ProductCategory{},
		&ProductBrand{},
		&Provider{},
		&Product{},
		&AutomotiveCenterInfo{},
		&AgentUsageLog{},
		&APIKey{},
		&BlogPost{},
	}
}
