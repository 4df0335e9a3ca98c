package rule

// DefaultServerModules returns the built-in list of server-only module names.
// The list is static configuration: Node builtins that touch the host
// filesystem, network, or process; database drivers and ORMs; loggers;
// crypto and auth libraries; server frameworks; and build/test tooling.
// Each entry also covers its subpaths (see ModuleSet); node:-prefixed builtin
// specifiers are normalized before matching.
func DefaultServerModules() []string {
	return []string{
		// Node builtins.
		"child_process",
		"cluster",
		"dgram",
		"dns",
		"fs",
		"http",
		"http2",
		"https",
		"inspector",
		"module",
		"net",
		"os",
		"perf_hooks",
		"process",
		"readline",
		"repl",
		"tls",
		"trace_events",
		"tty",
		"v8",
		"vm",
		"worker_threads",
		"zlib",

		// Databases, drivers, ORMs.
		"better-sqlite3",
		"bookshelf",
		"cassandra-driver",
		"couchbase",
		"drizzle-orm",
		"ioredis",
		"knex",
		"kysely",
		"level",
		"leveldown",
		"memcached",
		"mikro-orm",
		"@mikro-orm/core",
		"mongodb",
		"mongoose",
		"mssql",
		"mysql",
		"mysql2",
		"objection",
		"oracledb",
		"pg",
		"pg-promise",
		"prisma",
		"@prisma/client",
		"redis",
		"sequelize",
		"sqlite3",
		"tedious",
		"typeorm",

		// Loggers.
		"bunyan",
		"log4js",
		"morgan",
		"npmlog",
		"pino",
		"pino-http",
		"roarr",
		"signale",
		"winston",

		// Crypto, auth, sessions.
		"argon2",
		"bcrypt",
		"bcryptjs",
		"cookie-parser",
		"csurf",
		"express-session",
		"helmet",
		"jsonwebtoken",
		"node-forge",
		"passport",

		// Server frameworks and transports.
		"@hapi/hapi",
		"@nestjs/core",
		"@trpc/server",
		"express",
		"fastify",
		"hapi",
		"koa",
		"micro",
		"polka",
		"restify",
		"socket.io",
		"ws",

		// Build, test, and dev tooling.
		"@babel/core",
		"esbuild",
		"eslint",
		"grunt",
		"gulp",
		"jest",
		"mocha",
		"nodemon",
		"parcel",
		"prettier",
		"rollup",
		"ts-node",
		"typescript",
		"vite",
		"vitest",
		"webpack",

		// Server-bound utilities and SDKs.
		"@aws-sdk/client-s3",
		"@azure/identity",
		"@google-cloud/storage",
		"aws-sdk",
		"chokidar",
		"dotenv",
		"execa",
		"firebase-admin",
		"fs-extra",
		"glob",
		"mkdirp",
		"multer",
		"node-fetch",
		"nodemailer",
		"playwright",
		"puppeteer",
		"rimraf",
		"sharp",
		"shelljs",
		"stripe",
		"twilio",
		"undici",
	}
}
