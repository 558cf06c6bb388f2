package db

import "fmt"

// SchemaSQL returns the content table schema. The HNSW index dimension is
// fixed here; vectors of any other length are rejected before they reach
// the database.
func SchemaSQL(dimension int) string {
	return fmt.Sprintf(`
    DEFINE TABLE IF NOT EXISTS content SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS type ON content TYPE string;
    DEFINE FIELD IF NOT EXISTS title ON content TYPE string;
    DEFINE FIELD IF NOT EXISTS text ON content TYPE string;
    DEFINE FIELD IF NOT EXISTS embedding ON content TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS meta ON content TYPE option<object> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS updated ON content TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS content_type ON content FIELDS type;
    DEFINE INDEX IF NOT EXISTS content_embedding ON content FIELDS embedding HNSW DIMENSION %d DIST COSINE TYPE F32;
`, dimension)
}
