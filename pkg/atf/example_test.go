package atf_test

import (
	"context"

	"github.com/dkoosis/atfgo/internal/logging"
	"github.com/dkoosis/atfgo/pkg/atf"
	"github.com/dkoosis/atfgo/pkg/marker"
	"github.com/dkoosis/atfgo/pkg/suite"
)

func ExampleProgram_Run() {
	s := suite.New().
		Add("copies_files", func(t *suite.T) {},
			suite.Doc("Copies a file with cp"),
			suite.Progs("/bin/cp"),
			suite.Timeout(30)).
		Add("needs_root", func(t *suite.T) {}, suite.User(marker.Root))

	p := &atf.Program{Name: "example", NewEngine: atf.Use(s), Logger: logging.Discard()}
	p.Run(context.Background(), []string{"-l"})
	// Output:
	// Content-Type: application/X-atf-tp; version="1"
	//
	// ident: copies_files
	// descr: Copies a file with cp
	// require.progs: /bin/cp
	// timeout: 30
	//
	// ident: needs_root
	// require.user: root
}
