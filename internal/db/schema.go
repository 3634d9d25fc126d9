package db

import "fmt"

// schemaTemplate contains the database schema initialization SQL. The HNSW
// index dimension must match the configured embedding model's output, so it
// is injected at init time.
const schemaTemplate = `
    -- ==========================================================================
    -- KNOWLEDGE TABLE (community facts for retrieval)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS knowledge SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS category ON knowledge TYPE string;
    DEFINE FIELD IF NOT EXISTS content ON knowledge TYPE string;
    DEFINE FIELD IF NOT EXISTS metadata ON knowledge TYPE option<object> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS embedding ON knowledge TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS created_at ON knowledge TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS knowledge_category ON knowledge FIELDS category;
    DEFINE INDEX IF NOT EXISTS knowledge_embedding ON knowledge FIELDS embedding HNSW DIMENSION %d DIST COSINE TYPE F32;

    -- ==========================================================================
    -- PROSPECT TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS prospect SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS first_name ON prospect TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS last_name ON prospect TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS email ON prospect TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS phone ON prospect TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS tour_scheduled ON prospect TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS tour_datetime ON prospect TYPE option<datetime>;
    DEFINE FIELD IF NOT EXISTS created_at ON prospect TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated_at ON prospect TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS prospect_email ON prospect FIELDS email;
    DEFINE INDEX IF NOT EXISTS prospect_tour ON prospect FIELDS tour_scheduled;

    -- ==========================================================================
    -- SESSION TABLE (conversation history + running understanding)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS session SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS prospect ON session TYPE option<record<prospect>>;
    DEFINE FIELD IF NOT EXISTS conversation_history ON session TYPE array DEFAULT [] FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS current_understanding ON session TYPE option<object> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS started_at ON session TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated_at ON session TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS is_active ON session TYPE bool DEFAULT true;

    DEFINE INDEX IF NOT EXISTS session_prospect ON session FIELDS prospect;

    -- ==========================================================================
    -- ENRICHMENT EVENT TABLE (audit log of extracted facts)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS enrichment_event SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS session ON enrichment_event TYPE record<session>;
    DEFINE FIELD IF NOT EXISTS event_type ON enrichment_event TYPE string;
    DEFINE FIELD IF NOT EXISTS event_data ON enrichment_event TYPE option<object> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS extracted_by_agent ON enrichment_event TYPE string;
    DEFINE FIELD IF NOT EXISTS source_message ON enrichment_event TYPE string;
    DEFINE FIELD IF NOT EXISTS confidence ON enrichment_event TYPE float DEFAULT 1.0;
    DEFINE FIELD IF NOT EXISTS created_at ON enrichment_event TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS event_session ON enrichment_event FIELDS session, created_at;
    DEFINE INDEX IF NOT EXISTS event_type ON enrichment_event FIELDS event_type;
`

// SchemaSQL renders the schema for the given embedding dimension.
func SchemaSQL(embeddingDimension int) string {
	return fmt.Sprintf(schemaTemplate, embeddingDimension)
}
