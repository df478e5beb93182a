package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/audio/pkg/audio"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/voice2text/pkg/audiodevice"
	"github.com/xaionaro-go/voice2text/pkg/audiodevice/implementations/miniaudio"
	"github.com/xaionaro-go/voice2text/pkg/audiodevice/implementations/portaudio"
	"github.com/xaionaro-go/voice2text/pkg/audioinput"
	"github.com/xaionaro-go/voice2text/pkg/config"
	"github.com/xaionaro-go/voice2text/pkg/speech"
	"github.com/xaionaro-go/voice2text/pkg/speech/recognizer"
)

func syntaxExit(message string) {
	fmt.Fprintf(os.Stderr, "syntax error: %s\n", message)
	pflag.Usage()
	os.Exit(2)
}

func main() {
	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	configFlag := pflag.String("config", "", "path to the YAML config file")
	engineFlag := pflag.String("engine", "", "speech recognition engine; empty means the first available one")
	langFlag := pflag.String("language", "", "expected speech language; empty means autodetect")
	modelFlag := pflag.String("model", "", "path to a local whisper model file")
	apiKeyFlag := pflag.String("api-key", "", "API key for hosted engines (also: OPENAI_API_KEY, DEEPGRAM_API_KEY)")
	endpointFlag := pflag.String("endpoint", "", "override the hosted engine endpoint")
	backendFlag := pflag.String("backend", "", "audio backend: miniaudio or portaudio")
	deviceFlag := pflag.Int("device", audiodevice.DefaultDeviceIndex, "capture device index; -1 means the system default")
	durationFlag := pflag.Float64("duration", 0, "cap each utterance at this many seconds; 0 means no cap")
	timeoutFlag := pflag.Float64("timeout", 0, "give up waiting for speech after this many seconds")
	translateFlag := pflag.Bool("translate", false, "translate the recognized speech to English (local whisper only)")
	gpuFlag := pflag.Int("gpu", -1, "GPU device ID for the local whisper engine")
	noWaitFlag := pflag.Bool("no-wait-for-speech", false, "start recording immediately instead of waiting for speech")
	onceFlag := pflag.Bool("once", false, "recognize one utterance and exit")
	saveAudioFlag := pflag.String("save-audio", "", "save every captured utterance to this WAV file")
	listDevicesFlag := pflag.Bool("list-devices", false, "list capture devices and exit")
	listEnginesFlag := pflag.Bool("list-engines", false, "list known engines and exit")
	pflag.Parse()
	if pflag.NArg() != 0 {
		syntaxExit("expected no positional arguments")
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	if *listEnginesFlag {
		for _, name := range recognizer.List() {
			fmt.Println(name)
		}
		return
	}

	cfg := config.Default()
	if *configFlag != "" {
		var err error
		cfg, err = config.Load(*configFlag)
		if err != nil {
			logger.Fatal(ctx, err)
		}
	}
	if *backendFlag != "" {
		cfg.Audio.Backend = *backendFlag
	}
	if pflag.Lookup("device").Changed {
		cfg.Audio.DeviceIndex = *deviceFlag
	}
	if *timeoutFlag > 0 {
		cfg.Audio.Timeout = *timeoutFlag
	}
	if *engineFlag != "" {
		cfg.Engine.Name = *engineFlag
	}
	if *langFlag != "" {
		cfg.Engine.Language = *langFlag
	}
	if *modelFlag != "" {
		cfg.Engine.ModelPath = *modelFlag
	}
	if *apiKeyFlag != "" {
		cfg.Engine.APIKey = *apiKeyFlag
	}
	if *endpointFlag != "" {
		cfg.Engine.Endpoint = *endpointFlag
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal(ctx, err)
	}

	backend, err := buildBackend(cfg.Audio.Backend)
	if err != nil {
		logger.Fatal(ctx, err)
	}

	if *listDevicesFlag {
		listDevices(ctx, backend)
		return
	}

	audioCfg := cfg.AudioInput()
	in, err := audioinput.New(ctx, audioCfg, backend)
	if err != nil {
		logger.Fatal(ctx, err)
	}
	defer in.Close()

	params := engineParams(cfg)
	if *translateFlag {
		params.ShouldTranslate = true
	}
	if *gpuFlag != -1 {
		gpuID := *gpuFlag
		params.GPUDeviceID = &gpuID
	}
	engine, err := recognizer.Select(ctx, cfg.Engine.Name, params)
	if err != nil {
		logger.Fatal(ctx, err)
	}
	defer engine.Close()
	logger.Infof(ctx, "initialized engine '%s'", engine.Name())

	if err := recognizer.CheckAudioFormat(
		ctx,
		engine,
		audioCfg.Encoding(),
		audio.Channel(audioCfg.Channels),
	); err != nil {
		logger.Fatal(ctx, err)
	}

	ctx, cancelFn := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancelFn()
	observability.Go(ctx, func() {
		<-ctx.Done()
		if err := in.StopStream(context.WithoutCancel(ctx)); err != nil {
			logger.Errorf(ctx, "unable to stop the stream: %v", err)
		}
	})

	duration := time.Duration(*durationFlag * float64(time.Second))
	for {
		pcm, err := in.Capture(ctx, duration, !*noWaitFlag)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			logger.Fatal(ctx, err)
		}
		if pcm == nil {
			logger.Debugf(ctx, "heard nothing")
			continue
		}

		if *saveAudioFlag != "" {
			if err := in.SaveWAV(ctx, *saveAudioFlag, pcm); err != nil {
				logger.Errorf(ctx, "unable to save the audio: %v", err)
			}
		}

		result, err := engine.Recognize(ctx, pcm)
		if err != nil {
			logger.Errorf(ctx, "unable to recognize the utterance: %v", err)
			continue
		}
		if result == nil {
			logger.Debugf(ctx, "no usable speech in the utterance")
			continue
		}
		fmt.Println(result.Text)

		if *onceFlag {
			return
		}
	}
}

func buildBackend(name string) (audiodevice.Backend, error) {
	switch name {
	case "miniaudio":
		return miniaudio.NewBackend(), nil
	case "portaudio":
		return portaudio.NewBackend(), nil
	}
	return nil, fmt.Errorf("unknown audio backend: '%s'", name)
}

func listDevices(ctx context.Context, backend audiodevice.Backend) {
	devices, err := backend.ListDevices(ctx)
	if err != nil {
		logger.Fatal(ctx, err)
	}
	for _, d := range devices {
		marker := " "
		if d.IsDefault {
			marker = "*"
		}
		fmt.Printf("%s %3d: %s\n", marker, d.Index, d.Name)
	}
}

func engineParams(cfg config.Config) recognizer.Params {
	params := recognizer.Params{
		Language:        speech.Language(cfg.Engine.Language),
		SampleRate:      audio.SampleRate(cfg.Audio.SampleRate),
		Channels:        audio.Channel(cfg.Audio.Channels),
		ModelPath:       cfg.Engine.ModelPath,
		ShouldTranslate: cfg.Engine.Translate,
		APIKey:          cfg.Engine.APIKey,
		Model:           cfg.Engine.Model,
		Endpoint:        cfg.Engine.Endpoint,
	}
	if params.APIKey == "" {
		for _, envVar := range []string{"OPENAI_API_KEY", "DEEPGRAM_API_KEY"} {
			if v := os.Getenv(envVar); v != "" {
				params.APIKey = v
				break
			}
		}
	}
	return params
}
