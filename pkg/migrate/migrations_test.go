package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/iacol-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks []string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestConfigurationMigrationCascadesFromConfiguration(t *testing.T) {
	content := readMigration(t, "create_agent_configurations")
	assertContains(t, content, []string{
		"CREATE TABLE IF NOT EXISTS agent_configurations",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_agent_configurations_user_agent",
		"USING GIN (configuration_data)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_brands_config_name",
		"CREATE TABLE IF NOT EXISTS provider_brands",
		"CHECK (price > 0)",
	})
	if got := strings.Count(content, "REFERENCES agent_configurations(id) ON DELETE CASCADE"); got != 7 {
		t.Fatalf("expected 7 cascading configuration references, got %d", got)
	}
}

func TestCapabilityMigrationBackfillsFromNames(t *testing.T) {
	content := readMigration(t, "add_agent_capabilities")
	assertContains(t, content, []string{
		"ADD COLUMN IF NOT EXISTS supports_providers",
		"ADD COLUMN IF NOT EXISTS supports_advanced_catalog",
		"WHERE name ILIKE '%MechAI%'",
		"WHERE name ILIKE '%FindPart%'",
	})
}

func TestBlogMigrationUniqueSlug(t *testing.T) {
	content := readMigration(t, "create_blog_and_api_keys")
	assertContains(t, content, []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_blog_posts_slug",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_api_keys_key_hash",
		"CHECK (category IN ('guias', 'casos', 'faq'))",
	})
}
