// Package config provides preset management for Acronym Hunt.
//
// Presets are JSON files in a config directory (configs/ by default), one
// engine.GameConfig per file. The file name without extension is the preset
// ID used when creating sessions. Fields a preset leaves out keep the engine
// defaults, so a preset can be as small as a name, a description and the
// values it changes:
//
//	{
//	  "name": "blitz",
//	  "description": "Thirty seconds, no countdown",
//	  "time_budget_seconds": 30,
//	  "countdown_seconds": 0
//	}
//
// Manager caches parsed presets, lists the valid ones, saves new ones after
// validation, and falls back to a built-in preset when the directory holds
// nothing usable.
package config
