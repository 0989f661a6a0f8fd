package sql

import "embed"

// Migrations holds the DDL for the school directory table.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// SelectSchools reads the school directory. {{table}} is replaced with the
// sanitized table identifier.
//
//go:embed queries/select_schools.sql
var SelectSchools string
