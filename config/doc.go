// Package config provides bot profile management for the game client.
//
// A profile bundles everything one bot needs: the server endpoint, the
// transport to reach it, credentials, and the move policy to play with.
// Profiles live as JSON files in a directory, one file per profile:
//
//	{
//	  "server": "localhost:7654",
//	  "username": "example_bot",
//	  "password": "kermit",
//	  "policy": "heuristic"
//	}
//
// Manager loads profiles on demand and caches them behind a read-write
// lock, so the swarm tool can share one manager across bots.
//
// Environment:
//
// LoadEnv reads a dotenv file into the process environment (a missing file
// is ignored). ApplyEnv fills unset profile fields from CHALLENGE_SERVER,
// CHALLENGE_USER and CHALLENGE_PASS, which keeps passwords out of profile
// files when desired.
package config
