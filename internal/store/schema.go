// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

// Relation names.
const (
	RelCodeGraph                = "CodeGraph"
	RelDependencyEdges          = "DependencyEdges"
	RelIngestionCoverageFiles   = "IngestionCoverageFiles"
	RelIngestionCoverageFolders = "IngestionCoverageFolders"
	RelIngestionCoverageGlobal  = "IngestionCoverageGlobal"
)

// datalogSchema is the CozoScript schema for every relation the core
// writes. It is not vertically partitioned: CodeGraph carries ISGL1
// identity plus positional metadata in one relation, since there is no
// embedding/search payload to split out onto its own table.
const datalogSchema = `
:create CodeGraph {
	key: String
	=>
	name: String,
	entity_type: String,
	entity_class: String,
	language: String,
	file_path: String,
	line_start: Int,
	line_end: Int,
	content_hash: String,
	semantic_path: String,
	root_subfolder_l1: String,
	root_subfolder_l2: String,
	signature: String default '',
	run_id: String,
}

:create DependencyEdges {
	from_key: String,
	to_key: String,
	edge_type: String,
	source_file: String,
	source_line: Int
	=>
	run_id: String default '',
}

:create IngestionCoverageFiles {
	run_id: String,
	file_path: String
	=>
	status: String,
	language: String,
	entities: Int default 0,
	edges: Int default 0,
	size_bytes: Int default 0,
	error_message: String default '',
	parse_duration_ms: Int default 0,
}

:create IngestionCoverageFolders {
	run_id: String,
	folder_path: String,
	folder_depth: Int
	=>
	total: Int default 0,
	eligible: Int default 0,
	parsed: Int default 0,
	failed: Int default 0,
	excluded: Int default 0,
	binary: Int default 0,
	entities: Int default 0,
	edges: Int default 0,
	languages: String default '',
	coverage_percent: Float default 0.0,
	entity_density: Float default 0.0,
}

:create IngestionCoverageGlobal {
	run_id: String
	=>
	total: Int default 0,
	eligible: Int default 0,
	parsed: Int default 0,
	failed: Int default 0,
	excluded: Int default 0,
	binary: Int default 0,
	too_large: Int default 0,
	unsupported_languages: Int default 0,
	entities: Int default 0,
	edges: Int default 0,
	languages: String default '',
	unsupported_extensions: String default '',
	duration_ms: Int default 0,
	timestamp: String default '',
	error_log_path: String default '',
}
`
