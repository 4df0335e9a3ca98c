package rule_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serverfence/serverfence/pkg/rule"
)

// check runs the engine on a client-eligible path.
func check(t *testing.T, engine *rule.Engine, src string) *rule.FileReport {
	t.Helper()

	report, err := engine.Check(context.Background(), "src/app.tsx", []byte(src))
	require.NoError(t, err)

	return report
}

func TestCheck_UnusedServerImport(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `import pino from 'pino';`)

	require.Len(t, report.Diagnostics, 1)

	diag := report.Diagnostics[0]
	assert.Equal(t, rule.KindServerOnlyImport, diag.Kind)
	assert.Equal(t, rule.ReasonNoReads, diag.Reason)
	assert.Equal(t, "pino", diag.Module)
	require.Len(t, diag.Suggestions, 1)
	assert.Equal(t, rule.KindSuggestMarker, diag.Suggestions[0].Kind)
}

func TestCheck_ConfinedReadIsSafe(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `
import pino from 'pino';
const fn = createServerFn().handler(() => { pino.info('ok'); });
`)

	assert.Empty(t, report.Diagnostics)
}

func TestCheck_UnconfinedReadDespiteBoundary(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `
import pino from 'pino';
const fn = createServerFn().handler(() => { pino.info('ok'); });
pino.warn('leak');
`)

	require.Len(t, report.Diagnostics, 1)

	diag := report.Diagnostics[0]
	assert.Equal(t, rule.KindServerOnlyImport, diag.Kind)
	assert.Equal(t, rule.ReasonUnconfinedRead, diag.Reason)
	assert.Equal(t, "pino", diag.Module)
}

func TestCheck_StarReexport(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `export * from 'fs';`)

	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, rule.ReasonReexport, report.Diagnostics[0].Reason)
	assert.Equal(t, "fs", report.Diagnostics[0].Module)
}

func TestCheck_NamedReexport(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `export { readFileSync } from 'fs';`)

	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, rule.ReasonReexport, report.Diagnostics[0].Reason)
}

func TestCheck_TypeOnlyReexportIsSafe(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `export type { Stats } from 'fs';`)

	assert.Empty(t, report.Diagnostics)
}

func TestCheck_MarkerSuppressesEverything(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `
import 'server-only';
import fs from 'fs';
export * from 'child_process';
fs.readFileSync('/etc/passwd');
require('net');
`)

	assert.Empty(t, report.Diagnostics)
}

func TestCheck_MarkerViaRequire(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `
const marker = require('server-only');
const fs = require('fs');
fs.readFileSync('x');
`)

	assert.Empty(t, report.Diagnostics)
}

func TestCheck_MarkerInsideFunctionDoesNotCount(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `
import fs from 'fs';
function f() { require('server-only'); }
fs.readFileSync('x');
`)

	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, rule.ReasonUnconfinedRead, report.Diagnostics[0].Reason)
}

func TestCheck_MarkerCheckDisabled(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, func(o *rule.Options) {
		o.CheckServerOnlyMarker = false
	})
	report := check(t, engine, `
import 'server-only';
import fs from 'fs';
fs.readFileSync('x');
`)

	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, "fs", report.Diagnostics[0].Module)
}

func TestCheck_UnusedRequire(t *testing.T) {
	t.Parallel()

	src := `const fs = require('fs');`

	withReporting := newEngine(t, nil)
	report := check(t, withReporting, src)
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, rule.KindServerOnlyRequire, report.Diagnostics[0].Kind)
	assert.Equal(t, rule.ReasonNoReads, report.Diagnostics[0].Reason)

	withoutReporting := newEngine(t, func(o *rule.Options) {
		o.ReportUnusedImports = false
	})
	report = check(t, withoutReporting, src)
	assert.Empty(t, report.Diagnostics)
}

func TestCheck_SideEffectImport(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `import 'pino';`)

	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, rule.ReasonSideEffectImport, report.Diagnostics[0].Reason)
}

func TestCheck_BareRequire(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `require('dotenv');`)

	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, rule.KindServerOnlyRequire, report.Diagnostics[0].Kind)
	assert.Equal(t, rule.ReasonBareRequire, report.Diagnostics[0].Reason)
}

func TestCheck_BareRequireInsideBoundaryIsSafe(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `
const fn = createServerFn().handler(() => { require('dotenv'); });
`)

	assert.Empty(t, report.Diagnostics)
}

func TestCheck_RequireInsideBoundaryIsSafe(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `
const fn = createServerFn().handler(() => {
  const fs = require('fs');
  return fs.readFileSync('x');
});
`)

	assert.Empty(t, report.Diagnostics)
}

func TestCheck_DestructuredRequireReadAtTopLevel(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `
const { readFile } = require('fs');
readFile('x', done);
`)

	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, rule.KindServerOnlyRequire, report.Diagnostics[0].Kind)
	assert.Equal(t, rule.ReasonUnconfinedRead, report.Diagnostics[0].Reason)
}

func TestCheck_NamespaceImport(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `
import * as fs from 'fs';
fs.readFileSync('x');
`)

	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, rule.ReasonUnconfinedRead, report.Diagnostics[0].Reason)
}

func TestCheck_AliasedNamedImportConfined(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `
import { readFileSync as read } from 'fs';
const fn = createServerFn().handler(() => read('x'));
`)

	assert.Empty(t, report.Diagnostics)
}

func TestCheck_TypeOnlyImportIsSafe(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `import type { Stats } from 'fs';`)

	assert.Empty(t, report.Diagnostics)
}

func TestCheck_NonServerModuleIgnored(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `
import { useState } from 'react';
const [x, setX] = useState(0);
`)

	assert.Empty(t, report.Diagnostics)
}

func TestCheck_ShadowedImportCountsAsUnused(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `
import pino from 'pino';
const fn = createServerFn().handler(() => {
  const pino = makeLogger();
  pino.info('shadowed');
});
`)

	// Every read resolves to the shadowing declaration, so the import itself
	// has zero reads and is reported as unused.
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, rule.ReasonNoReads, report.Diagnostics[0].Reason)
}

func TestCheck_ShadowByArrowParameter(t *testing.T) {
	t.Parallel()

	src := `
import pino from 'pino';
const names = items.map(pino => pino.name);
`

	engine := newEngine(t, func(o *rule.Options) { o.ReportUnusedImports = false })
	report := check(t, engine, src)

	// The unparenthesized arrow parameter shadows the import; the body read
	// resolves to the parameter, not the import.
	assert.Empty(t, report.Diagnostics)

	engine = newEngine(t, nil)
	report = check(t, engine, src)

	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, rule.ReasonNoReads, report.Diagnostics[0].Reason)
}

func TestCheck_ShadowByForOfBinding(t *testing.T) {
	t.Parallel()

	src := `
import pino from 'pino';
for (const pino of loggers) {
  pino.flush();
}
`

	engine := newEngine(t, func(o *rule.Options) { o.ReportUnusedImports = false })
	report := check(t, engine, src)

	assert.Empty(t, report.Diagnostics)

	engine = newEngine(t, nil)
	report = check(t, engine, src)

	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, rule.ReasonNoReads, report.Diagnostics[0].Reason)
}

func TestCheck_ShadowByForInBinding(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, func(o *rule.Options) { o.ReportUnusedImports = false })
	report := check(t, engine, `
import pino from 'pino';
for (let pino in registry) {
  use(pino);
}
`)

	assert.Empty(t, report.Diagnostics)
}

func TestCheck_ShadowByNamedFunctionExpression(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, func(o *rule.Options) { o.ReportUnusedImports = false })
	report := check(t, engine, `
import pino from 'pino';
const log = function pino() { return pino; };
`)

	// A function expression's name binds only inside its own body, where it
	// shadows the import for the recursive reference.
	assert.Empty(t, report.Diagnostics)
}

func TestCheck_ForOfAssignmentIsNotAShadow(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, func(o *rule.Options) { o.ReportUnusedImports = false })
	report := check(t, engine, `
import pino from 'pino';
let p;
for (p of loggers) {
  pino.info(p);
}
`)

	// No declaration keyword in the header: the body read still resolves to
	// the import and is unconfined.
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, rule.ReasonUnconfinedRead, report.Diagnostics[0].Reason)
}

func TestCheck_ChainedBoundary(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `
import pg from 'pg';
const route = createServerRoute('/users').middleware([auth]).handler(async () => {
  return pg.query('select 1');
});
`)

	assert.Empty(t, report.Diagnostics)
}

func TestCheck_FunctionArgAnywhereInChain(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `
import pg from 'pg';
createMiddleware().server(({ next }) => { pg.query('select 1'); return next(); });
`)

	assert.Empty(t, report.Diagnostics)
}

func TestCheck_IdentifierCallbackIsNotABoundary(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `
import pino from 'pino';
function log() { pino.info('x'); }
const fn = createServerFn().handler(log);
`)

	// The callback is passed by name; its body is not lexically inside the
	// boundary argument, so the read stays unconfined.
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, rule.ReasonUnconfinedRead, report.Diagnostics[0].Reason)
}

func TestCheck_CustomServerFunctionNames(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, func(o *rule.Options) {
		o.ServerFunctionNames = []string{"serverAction"}
	})
	report := check(t, engine, `
import fs from 'fs';
const a = serverAction().handler(() => fs.readFileSync('x'));
`)
	assert.Empty(t, report.Diagnostics)

	report = check(t, engine, `
import fs from 'fs';
const a = createServerFn().handler(() => fs.readFileSync('x'));
`)
	require.Len(t, report.Diagnostics, 1)
}

func TestCheck_ServerFunctionCheckDisabled(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, func(o *rule.Options) {
		o.CheckServerFunctions = false
	})
	report := check(t, engine, `
import pino from 'pino';
const fn = createServerFn().handler(() => { pino.info('ok'); });
`)

	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, rule.ReasonUnconfinedRead, report.Diagnostics[0].Reason)
}

func TestCheck_MultipleDiagnosticsSortedBySpan(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `
import fs from 'fs';
import pino from 'pino';
fs.readFileSync('x');
pino.info('y');
`)

	require.Len(t, report.Diagnostics, 2)
	assert.Equal(t, "fs", report.Diagnostics[0].Module)
	assert.Equal(t, "pino", report.Diagnostics[1].Module)
	assert.Less(t, report.Diagnostics[0].Span.Start, report.Diagnostics[1].Span.Start)
}

func TestCheck_NonEligibleFileSkipsParsing(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)

	report, err := engine.Check(context.Background(), "src/util.ts", []byte(`import fs from 'fs'; fs.readFileSync('x');`))
	require.NoError(t, err)
	assert.Equal(t, rule.FileNotEligible, report.Class)
	assert.Empty(t, report.Diagnostics)
}

func TestCheck_ServerFileSkipsAnalysis(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)

	report, err := engine.Check(context.Background(), "src/db.server.ts", []byte(`import fs from 'fs'; fs.readFileSync('x');`))
	require.NoError(t, err)
	assert.Equal(t, rule.FileServer, report.Class)
	assert.Empty(t, report.Diagnostics)
}

func TestCheck_Deterministic(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	src := `
import fs from 'fs';
import 'pino';
fs.readFileSync('x');
`

	first := check(t, engine, src)
	second := check(t, engine, src)

	assert.Equal(t, first, second)
}

func TestCheck_VarHoistingInsideBoundary(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `
import fs from 'fs';
const fn = createServerFn().handler(() => {
  if (ready) {
    var data = fs.readFileSync('x');
  }
  return data;
});
`)

	assert.Empty(t, report.Diagnostics)
}

func TestCheck_ReadBeforeImportStillResolves(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, nil)
	report := check(t, engine, `
log();
function log() { pino.info('x'); }
import pino from 'pino';
`)

	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, rule.ReasonUnconfinedRead, report.Diagnostics[0].Reason)
}
