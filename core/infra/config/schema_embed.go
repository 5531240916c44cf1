package config

import "embed"

const schedulerSchemaFile = "schema/scheduler.schema.json"

//go:embed schema/*.json
var configSchemaFS embed.FS
