/*
Package logtree records log entries into a tree of nested scopes and renders the tree
incrementally to grouping consoles.

Included are:
  - scopes, with an ambient context slot so that logging inside a scope lands in it
  - timers and promises that carry the scope they were created in
  - a renderer mapping the tree onto a console's group/groupEnd cursor, reflowing late entries
  - an [slog.Handler] bridge, and [context.Context] carriage of scope handles

# Hello, world

	package main

	import "github.com/AndrewHarrisSPU/logtree"

	func main() {
		log, _ := logtree.New(logtree.LevelAPI, logtree.Using.Stdout)
		log.API().Info("Hello, Roswell")
	}

# Scopes

A scope is an entry holding other entries. Passing a function to [Scope.Scope]
runs it with the scope entered:

	log.Scope("landing", func(s *logtree.Scope[logtree.Levels]) {
		log.API().Warn("🛸 spotted") // appended under "landing"
	})

Without a function, the returned handle appends under the scope from anywhere:

	s := log.Scope("landing", nil)
	s.API().Info("later")

# Tasks

[Tasks] schedules callbacks that run inside the scope active when they were scheduled.
Each timer opens an idle scope, which turns interactive while its callback runs and
ends with a completion entry:

	log.Scope("polling", func(*logtree.Scope[logtree.Levels]) {
		log.Tasks().SetTimeout(func() {
			log.API().Info("tick") // appended under the timer scope, under "polling"
		}, time.Second)
	})

[NewPromise] does the same for a value settled once, and its continuations.

# Rendering

A [Renderer] is a [Sink]. Groups open for scopes and close, innermost first, when output
moves elsewhere in the tree. An entry arriving under a scope whose group already closed
reopens the scope's chain on a later tick:

	r := logtree.NewOutput().Colors(false).Renderer()
	log.Setup(logtree.Using.Output(r))

# Goroutines

The ambient slot models one logical thread of control. Scope bodies and task activations
run one at a time, so a scope body must not wait on a timer or promise of the same logger.
Other goroutines should log through a scope handle, or a [context.Context] carrying one:

	ctx := logtree.NewContext(context.Background(), s)
	slog.New(logtree.NewHandler(log.Core(), nil)).InfoContext(ctx, "from a worker")
*/
package logtree
