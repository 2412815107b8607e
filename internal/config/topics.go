package config

const (
	// TopicIngestEmbed is the NSQ topic for per-chunk embedding tasks
	// published by the ingestion batch job.
	TopicIngestEmbed = "ingest.embed"
)
