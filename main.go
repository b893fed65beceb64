// Command intcode executes Intcode programs.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/nf/intcode/amp"
	"github.com/nf/intcode/arcade"
	"github.com/nf/intcode/config"
	"github.com/nf/intcode/hull"
	"github.com/nf/intcode/intcode"
	"github.com/nf/intcode/view"
)

func main() {
	log.SetPrefix("intcode: ")
	log.SetFlags(0)

	var (
		ampFlag      = flag.Bool("amp", false, "find the phase settings giving the highest amplifier thrust")
		feedbackFlag = flag.Bool("feedback", false, "like -amp, but with the amplifiers in a feedback loop")
		hullFlag     = flag.Bool("hull", false, "run the program as a hull painting robot")
		whiteFlag    = flag.Bool("white", false, "start the hull painting robot on a white panel")
		arcadeFlag   = flag.Bool("arcade", false, "run the program as an arcade game")
		playFlag     = flag.Bool("play", false, "play the arcade game in a window with the arrow keys")
		pngFlag      = flag.String("png", "", "write the final hull or arcade screen to `file`")
		devFlag      = flag.Bool("dev", false, "enable developer mode (re-run the program when it changes)")
		debugFlag    = flag.Bool("debug", false, "enable debugger")
		inputFlag    = flag.String("input", "", "comma-separated `values` queued as input in -dev and -debug modes")
		configFlag   = flag.String("config", "", "read configuration from `file` (default ./"+config.FileName+" if present)")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-amp | -feedback | -hull | -arcade] <program | ->\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s <-dev | -debug> [-input values] <program>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}
	progFile := flag.Arg(0)

	var (
		cfg *config.Config
		err error
	)
	if *configFlag != "" {
		cfg, err = config.Load(*configFlag)
	} else {
		cfg, err = config.Find(".")
	}
	if err != nil {
		log.Fatal(err)
	}

	if *devFlag || *debugFlag {
		if progFile == "-" {
			log.Fatal("-dev and -debug need a program file")
		}
		var input []int64
		if *inputFlag != "" {
			if input, err = intcode.Parse(*inputFlag); err != nil {
				log.Fatalf("-input: %v", err)
			}
		}
		if *debugFlag {
			err = debugMode(progFile, *devFlag, cfg.Machine.MemoryLimit, input, cfg.Debug.Watch)
		} else {
			err = devMode(progFile, cfg.Machine.MemoryLimit, input, intcode.NewConsole(nil, os.Stdout))
		}
		if err != nil {
			log.Fatal(err)
		}
		return
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	stdin := bufio.NewReader(os.Stdin)
	prog, err := readProgram(progFile, stdin)
	if err == nil {
		switch {
		case *ampFlag:
			err = runAmp(prog, cfg.Amp.Phases, cfg)
		case *feedbackFlag:
			err = runAmp(prog, cfg.Amp.FeedbackPhases, cfg)
		case *hullFlag:
			start := hull.Black
			if *whiteFlag {
				start = hull.White
			}
			err = runHull(prog, start, *pngFlag, cfg)
		case *arcadeFlag && *playFlag:
			err = playArcade(prog, cfg)
		case *arcadeFlag:
			err = runArcade(prog, *pngFlag, cfg)
		default:
			m := intcode.NewMachine(prog)
			m.Limit = cfg.Machine.MemoryLimit
			err = m.Run(intcode.NewConsole(stdin, os.Stdout), intcode.NewConsole(nil, os.Stdout))
			if err == nil && m.State == intcode.NeedsInput {
				err = fmt.Errorf("program waiting for input at %d", m.PC)
			}
		}
	}

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
}

// readProgram reads the program from file, or from stdin if file is "-".
func readProgram(file string, stdin *bufio.Reader) ([]int64, error) {
	if file == "-" {
		return intcode.ReadProgram(stdin)
	}
	return intcode.ReadFile(file)
}

func runAmp(prog []int64, phases []int64, cfg *config.Config) error {
	r, err := amp.Max(prog, phases[0], phases[1], amp.Limit(cfg.Machine.MemoryLimit))
	if err != nil {
		return err
	}
	fmt.Printf("%d %v\n", r.Signal, r.Phases)
	return nil
}

func runHull(prog []int64, start hull.Color, pngFile string, cfg *config.Config) error {
	m := intcode.NewMachine(prog)
	m.Limit = cfg.Machine.MemoryLimit
	h, err := hull.Paint(m, start)
	if err != nil {
		return err
	}
	fmt.Printf("painted %d panels\n%s", h.Painted(), h)
	if pngFile != "" {
		return writePNG(pngFile, h.Image(cfg.View.Scale))
	}
	return nil
}

func runArcade(prog []int64, pngFile string, cfg *config.Config) error {
	c := arcade.New(prog, cfg.Arcade.FreePlay)
	c.M.Limit = cfg.Machine.MemoryLimit
	var j arcade.Joystick
	if cfg.Arcade.FreePlay {
		j = arcade.Follow
	}
	score, err := c.Run(j)
	if err != nil {
		return err
	}
	fmt.Printf("blocks %d\nscore %d\n", c.Screen.Count(arcade.Block), score)
	if pngFile != "" {
		return writePNG(pngFile, c.Screen.Frame(cfg.View.Scale))
	}
	return nil
}

// playArcade runs the game in free play mode, showing it in a window and
// reading the joystick from the keyboard.
func playArcade(prog []int64, cfg *config.Config) error {
	var (
		c      = arcade.New(prog, true)
		frames = make(chan image.Image)
		keys   = make(chan int64, 16)
		errc   = make(chan error, 1)
		tick   = time.NewTicker(time.Second / 30)
		held   int64
	)
	defer tick.Stop()
	c.M.Limit = cfg.Machine.MemoryLimit
	c.Update = func(s *arcade.Screen) { frames <- s.Frame(cfg.View.Scale) }
	joystick := arcade.JoystickFunc(func(*arcade.Screen) (int64, error) {
		<-tick.C
		for {
			select {
			case held = <-keys:
			default:
				return held, nil
			}
		}
	})
	go func() {
		score, err := c.Run(joystick)
		if err == nil {
			log.Printf("score %d", score)
		}
		errc <- err
		close(frames)
	}()
	view.Main("intcode arcade", frames, keys)
	select {
	case err := <-errc:
		return err
	default:
		// Window closed while the game was still running.
		return nil
	}
}

func writePNG(file string, m image.Image) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	if err := png.Encode(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
