// Command kvfront serves a key-value store over HTTP. PUT /?name=key stores the
// request body under key, GET /?name=key returns it. Values are kept by the
// backend named in the configuration file: memcached, a MariaDB table, files in
// a directory, a Bolt database, S3, DynamoDB, another kvfront server, or a fast
// backend in front of a slow one.
//
// The configuration file is in rjson format, for example:
//
//	{
//		address: ":8080"
//		backend: {
//			type: "tiered"
//			fast: {type: "memcached", servers: ["/tmp/memcached.sock"]}
//			slow: {type: "mariadb", socket: "/run/mysqld/mysqld.sock", user: "kv", database: "test"}
//		}
//	}
//
// See package server for the status codes returned.
package main // import "github.com/nicolagi/kvfront/cmd/kvfront"
