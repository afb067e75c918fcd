// Package users defines the managed user entity and the data-service contract
// consumed by the user-management workflows, together with its backends.
//
// A User is either a doctor, which carries a license number (LANR), or an MFA
// (medical assistant), which carries none. The type tag and its required fields
// travel together: Normalize drops a license number from MFA payloads and
// CheckVariant rejects doctors without one.
//
// Backends:
//   - MemoryService: mutex-guarded in-memory list seeded with fixtures, with
//     optional simulated latency. This is the default mock backend.
//   - PostgresService: pgx pool; schema from the embedded goose migrations.
//   - RedisService: JSON values plus a creation-ordered sorted-set index.
//   - MongoService: one document per user.
//
// Every backend assigns IDs itself; callers never generate them.
package users
