// Package redisconn establishes the shared Redis connection used by the
// print-job queue and the bot state store.
package redisconn
