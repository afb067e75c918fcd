// Package redis connects to Redis through go-redis/v9.
//
// Config is read from REDIS_* environment variables; KeyPrefix namespaces the
// keys written by the users backend. Connect retries the initial ping within
// the connect timeout, and Healthcheck returns a probe for /healthz.
package redis
