package config

//go:generate go tool go-enum --marshal --names

// Specification of table rendering in output pages.
// ENUM(grid, list)
type TableMode string
