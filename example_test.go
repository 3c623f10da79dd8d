package logtree_test

import (
	"context"
	"errors"

	"github.com/AndrewHarrisSPU/logtree"
)

type scope = logtree.Scope[logtree.Levels]

// A renderer that never reflows on its own: late entries wait for Flush.
func heldRenderer() *logtree.Renderer {
	return logtree.NewOutput().
		Colors(false).
		Scheduler(func(func()) {}).
		Renderer()
}

func Example() {
	log, _ := logtree.New(logtree.LevelAPI,
		logtree.Using.Time(false),
		logtree.Using.Output(heldRenderer()),
	)

	log.API().Info("Hello, world")
	log.Scope("outer", func(*scope) {
		log.API().Log("inside")
		log.Scope("inner", func(*scope) {
			log.API().Error(errors.New("🛸 spotted"))
		})
	})
	log.API().Success("done")

	// Output:
	// ❕ Hello, world
	// outer
	//   | inside
	//   | inner
	//      | 🛑 🛸 spotted
	// ✅ done
}

func ExampleRenderer_Flush() {
	r := heldRenderer()
	log, _ := logtree.New(logtree.LevelAPI,
		logtree.Using.Time(false),
		logtree.Using.Output(r),
	)

	upload := log.Scope("upload", nil)
	upload.API().Log("started")
	log.API().Log("elsewhere")

	// late entries under a closed scope reopen it, once
	upload.API().Log("50%")
	upload.API().Log("100%")
	r.Flush()

	// Output:
	// upload
	//   | started
	// elsewhere
	// upload
	//   | 50%
	//   | 100%
}

func ExampleNewPromise() {
	log, _ := logtree.New(logtree.LevelAPI,
		logtree.Using.Time(false),
		logtree.Using.Output(heldRenderer()),
	)

	log.Scope("work", func(*scope) {
		p := logtree.NewPromise(log.Tasks(), func(resolve func(int), reject func(error)) {
			log.API().Log("executing")
			resolve(42)
		})
		v, _ := p.Await(context.Background())
		log.API().Log("result", v)
	})

	// Output:
	// work
	//   | 🙏 Promise created
	//      | executing
	//   | result 42
}

func ExampleLogger_Slog() {
	r := heldRenderer()
	log, _ := logtree.New(logtree.LevelAPI,
		logtree.Using.Time(false),
		logtree.Using.Output(r),
	)
	sl := log.Slog(nil)

	job := log.Scope("job", nil)
	ctx := logtree.NewContext(context.Background(), job)

	sl.Info("hello", "n", 1)
	sl.WarnContext(ctx, "from the job")
	r.Flush()

	// Output:
	// job
	// ❕ hello n=1
	// job
	//   | ⚠️ from the job
}
