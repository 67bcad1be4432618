package main

import (
	"flag"
	"fmt"
	"image"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"runtime/pprof"
	"slices"
	"strings"

	draw9 "9fans.net/go/draw"
	"9fans.net/go/plan9"
	"9fans.net/go/plan9/client"
	"9fans.net/go/plumb"
	xdraw "golang.org/x/image/draw"
)

const (
	progName = "ishelf"

	upArrowKey      = 61454
	downArrowKey    = 128
	leftArrowKey    = 61457
	rightArrowKey   = 61458
	pageUpKey       = 61455
	pageDownKey     = 61459
	scrollWheelUp   = 8
	scrollWheelDown = 16
	escKey          = 27
)

var (
	configFlag     = flag.String("c", "", "read configuration from `file`")
	windowSizeFlag = flag.String("w", "", "set window size, WxH")
	tileSizeFlag   = flag.String("t", "", "set tile size, WxH")
	outputMarked   = flag.Bool("o", false, "output the paths of marked books")
	startCover     = flag.Bool("s", false, "start with the cover view")
	silent         = flag.Bool("q", false, "silent mode, do not log anything")
	verbose        = flag.Bool("v", false, "verbose mode, log statistics for cache and refreshes")
	fast           = flag.Bool("f", false, "choose fast over best algorithms for scaling")
	gray           = flag.Bool("g", false, "show covers in grayscale")
	pageSize       = flag.Int("p", 0, "set page size. Default is 1 grid page")
	setMemoryLimit = flag.Bool("m", false, "run with 1G soft memory limit. Overrides GOMEMLIMIT")
)

var (
	enableProfiler = flag.Bool("profile", false, "run with the profiler enabled")
	cpuprofile     = flag.String("cpuprofile", "cpu.prof", "write cpu profile to `file`")
	memprofile     = flag.String("memprofile", "mem.prof", "write memory profile to `file`")
)

var plumber *client.Fid

// waitCursor is shown while covers load.
var waitCursor = &draw9.Cursor{
	Point: image.Pt(-8, -8),
	White: [32]uint8{
		0x7F, 0xFE, 0x7F, 0xFE, 0x3F, 0xFC, 0x1F, 0xF8,
		0x0F, 0xF0, 0x07, 0xE0, 0x03, 0xC0, 0x01, 0x80,
		0x01, 0x80, 0x03, 0xC0, 0x07, 0xE0, 0x0F, 0xF0,
		0x1F, 0xF8, 0x3F, 0xFC, 0x7F, 0xFE, 0x7F, 0xFE,
	},
	Black: [32]uint8{
		0x00, 0x00, 0x3F, 0xFC, 0x10, 0x08, 0x0B, 0xD0,
		0x05, 0xA0, 0x02, 0x40, 0x01, 0x80, 0x00, 0x00,
		0x00, 0x00, 0x01, 0x80, 0x02, 0x40, 0x05, 0xA0,
		0x0B, 0xD0, 0x17, 0xE8, 0x3F, 0xFC, 0x00, 0x00,
	},
}

type DisplayControl struct {
	display     *draw9.Display
	errch       chan error
	mctl        *draw9.Mousectl
	kctl        *draw9.Keyboardctl
	bgColor     *draw9.Image
	borderColor *draw9.Image
	fontColor   *draw9.Image
	painter     *drawPainter
	refresh     *RefreshQueue
	flusher     *displayFlusher
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: %s [-c config] [-w WxH] [-t WxH] [-f|-g|-o|-q|-v|-s|-m] [file|dir]..

%s browses a library of books.

Flags:
`, progName, progName)
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	log.SetPrefix("")
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()

	if *enableProfiler {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	cfg, err := LoadConfig(*configFlag)
	if err != nil {
		log.Fatal(err)
	}
	applyFlags(cfg)

	windowSize, ok := stringToPoint(cfg.Window)
	if !ok {
		log.Fatalf("cannot compute window size from %s", cfg.Window)
	}
	tileSize, ok := stringToPoint(cfg.Tile)
	if !ok {
		log.Fatalf("cannot compute tile size from %s", cfg.Tile)
	}
	theme, err := cfg.Theme(tileSize)
	if err != nil {
		log.Fatal(err)
	}

	if *setMemoryLimit {
		debug.SetMemoryLimit(1 * 1024 * 1024 * 1024) // or GOMEMLIMIT=1GiB
	}

	if *silent {
		log.SetOutput(io.Discard)
	}

	if *fast {
		fastScaler = xdraw.NearestNeighbor
		bestScaler = xdraw.BiLinear
	}
	grayCovers = cfg.Grayscale

	var books []*Book
	for _, p := range flag.Args() {
		books = append(books, addBooksOfPath(p)...)
	}
	if len(books) == 0 {
		os.Exit(0)
	}

	connectToPlumber()
	dctl := connectToDisplay(windowSize, theme, cfg.FontPattern)
	dctl.cls()

	grid := NewGrid(dctl.display.Image.Bounds(), tileSize, cfg.Padding)
	sh := NewShelf("books", books, grid, *pageSize, theme, cfg.PenWidth)
	sh.Connect(dctl)

	var views []View
	views = append(views, sh)
	if *startCover {
		cv := NewCoverView(books, 0, grid.area)
		cv.Connect(dctl)
		views = append(views, cv)
	}
	for len(views) > 0 {
		v := views[len(views)-1]
		v.Attach(dctl.display.Image.Bounds())
		if nv := v.Handle(); nv != nil {
			nv.Connect(dctl)
			views = append(views, nv)
		} else {
			views = views[0 : len(views)-1]
			if len(views) > 0 {
				syncViewsOnExit(v, views[len(views)-1])
			}
			v.Free()
		}
	}

	if *verbose {
		log.Printf("display: %v", dctl.flusher)
	}

	if *enableProfiler {
		f, err := os.Create(*memprofile)
		if err != nil {
			log.Fatal("could not create memory profile: ", err)
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal("could not write memory profile: ", err)
		}
	}

	if *outputMarked {
		for _, b := range books {
			if b.marked {
				fmt.Println(b.path)
			}
		}
	}
}

// applyFlags overrides the configuration with the flags set on the command line.
func applyFlags(cfg *Config) {
	if *windowSizeFlag != "" {
		cfg.Window = *windowSizeFlag
	}
	if *tileSizeFlag != "" {
		cfg.Tile = *tileSizeFlag
	}
	if *gray {
		cfg.Grayscale = true
	}
}

// syncViewsOnExit moves the shelf to the page of the book
// last shown by the cover view.
func syncViewsOnExit(viewExited, viewToGo View) {
	if cv, ok1 := viewExited.(*CoverView); ok1 {
		if sh, ok2 := viewToGo.(*Shelf); ok2 {
			sh.offset.GotoPage(sh.offset.PageOfItem(cv.at))
		}
	}
}

// isBookFile checks the file suffix to check if it is a book.
func isBookFile(name string) bool {
	return slices.Contains(bookFormats, strings.ToLower(filepath.Ext(name)))
}

// addBooksOfPath adds the book at path, descending it if a directory.
func addBooksOfPath(name string) []*Book {
	info, err := os.Stat(name)
	if err != nil {
		log.Printf("addBooksOfPath: cannot stat file: %v", err)
		return nil
	}
	if info.IsDir() {
		return scanForBooks(name)
	}
	if !info.Mode().IsRegular() {
		log.Printf("addBooksOfPath: ignoring special file %s", name)
		return nil
	}
	if !isBookFile(name) {
		return nil
	}
	return []*Book{NewBook(name)}
}

// scanForBooks walks dir and adds the books found.
func scanForBooks(dir string) []*Book {
	var books []*Book

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			log.Printf("scanForBooks: ignoring special file %s", path)
			return nil
		}
		if !isBookFile(path) {
			return nil
		}
		books = append(books, NewBook(path))
		return nil
	}

	if err := filepath.WalkDir(dir, walkFn); err != nil {
		log.Printf("scanForBooks: %s: %v", dir, err)
	}

	return books
}

func connectToDisplay(dims image.Point, theme *Theme, fontPattern string) *DisplayControl {
	errch := make(chan error)
	disp, err := draw9.Init(errch, "", progName, fmt.Sprintf("%dx%d", dims.X, dims.Y))
	if err != nil {
		log.Fatalf("display: cannot connect: %v", err)
	}
	kctl := disp.InitKeyboard()
	mctl := disp.InitMouse()

	dctl := &DisplayControl{
		display:     disp,
		errch:       errch,
		mctl:        mctl,
		kctl:        kctl,
		bgColor:     disp.AllocImageMix(theme.Background, theme.Background),
		borderColor: disp.AllocImageMix(theme.Highlight, theme.Highlight),
		fontColor:   disp.AllocImageMix(theme.Text, theme.Text),
		painter:     newDrawPainter(disp, fontPattern),
	}
	dctl.flusher = &displayFlusher{flush: disp.Flush}
	dctl.refresh = NewRefreshQueue(dctl.flusher.Flush)
	return dctl
}

// showWaitingAndCall changes the cursor to the waiting one and executes fn
func (dctl *DisplayControl) showWaitingAndCall(fn func()) {
	if err := dctl.display.SwitchCursor(waitCursor); err != nil {
		log.Printf("failed to switch cursor: %v", err)
	}
	fn()
	if err := dctl.display.SwitchCursor(nil); err != nil {
		log.Printf("failed to switch cursor: %v", err)
	}
}

func (dctl *DisplayControl) cls() {
	dctl.display.Image.Draw(dctl.display.Image.Bounds(), dctl.bgColor, nil, image.Point{})
	dctl.display.Flush()
}

func connectToPlumber() {
	var err error
	plumber, err = plumb.Open("send", plan9.OWRITE|plan9.OCEXEC)
	if err != nil {
		log.Printf("plumber not available: %v", err)
	}
}

// openBook plumbs the book to the reader.
func openBook(s string) {
	if plumber == nil {
		log.Printf("plumber not available")
		return
	}

	m := plumb.Message{
		Src:  progName,
		Dir:  filepath.Dir(s),
		Type: "text",
		Data: []byte(s),
	}
	if err := m.Send(plumber); err != nil {
		log.Printf("plumber: %v", err)
	}
}
