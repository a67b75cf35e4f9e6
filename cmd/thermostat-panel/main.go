// Command thermostat-panel reads the thermostat joystick, drives the setpoint
// display and publishes key events to MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.bug.st/serial"

	"github.com/sweeney/thermostat-panel/internal/button"
	"github.com/sweeney/thermostat-panel/internal/config"
	"github.com/sweeney/thermostat-panel/internal/gpio"
	"github.com/sweeney/thermostat-panel/internal/lcd"
	"github.com/sweeney/thermostat-panel/internal/mqtt"
	"github.com/sweeney/thermostat-panel/internal/panel"
	"github.com/sweeney/thermostat-panel/internal/pins"
	"github.com/sweeney/thermostat-panel/internal/status"
	"github.com/sweeney/thermostat-panel/internal/upload"
	"github.com/sweeney/thermostat-panel/internal/web"
)

func main() {
	configPath := flag.String("config", "/etc/thermostat-panel.yaml", "Path to YAML configuration")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", "", `HTTP status address (overrides config, "off" to disable)`)
	legacy := flag.Bool("legacy-debounce", false, "Reset the debounce timer on every poll")
	printState := flag.Bool("print-state", false, "Print current key state and exit")
	printPins := flag.Bool("print-pins", false, "Print the board pin mapping and exit")
	writeConfig := flag.String("write-config", "", "Write the effective configuration to this path and exit")

	flag.Parse()

	if *printPins {
		if err := printBoard(os.Stdout); err != nil {
			log.Fatalf("fatal: %v", err)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if *broker != "" {
		cfg.MQTT.Broker = *broker
	}
	if *httpAddr != "" {
		cfg.HTTP.Addr = *httpAddr
	}
	if *legacy {
		cfg.Debounce.Legacy = true
	}

	if *writeConfig != "" {
		if err := cfg.Save(*writeConfig); err != nil {
			log.Fatalf("fatal: %v", err)
		}
		log.Printf("config written to %s", *writeConfig)
		return
	}

	if err := run(cfg, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg *config.Config, printState bool) error {
	pressed, err := cfg.PressedLevel()
	if err != nil {
		return err
	}
	lines := cfg.Lines()

	offsets := make([]int, 0, len(lines))
	for _, d := range pins.Directions {
		offsets = append(offsets, lines[d])
	}
	gpioReader, err := gpio.NewRealReader(cfg.GPIO.Chip, offsets, cfg.GPIO.PullUp)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer gpioReader.Close()

	if printState {
		for _, d := range pins.Directions {
			fmt.Println(describeKey(d, lines[d], gpioReader.ReadLevel(lines[d]), pressed))
		}
		return nil
	}

	startTime := time.Now()
	inputs := newInputs(cfg, gpioReader, pressed, millisSince(startTime))

	tempCh := make(chan float64, 1)
	publisher, err := mqtt.NewRealPublisher(mqtt.Options{
		Broker:        cfg.MQTT.Broker,
		ClientID:      cfg.MQTT.ClientID,
		BufferSize:    cfg.MQTT.Buffer,
		OnTemperature: func(t float64) { offerTemperature(tempCh, t) },
	})
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	var display panelDisplay
	lcdPort := cfg.LCDPort()
	if lcdPort != "" {
		screen, closer, err := lcd.Open(lcdPort)
		if err != nil {
			log.Printf("lcd: %v (display disabled)", err)
		} else {
			defer closer.Close()
			if err := screen.Initialize(cfg.LCD.Baud); err != nil {
				log.Printf("lcd: initialize: %v", err)
			}
			log.Printf("lcd: %s at %d baud", lcdPort, screen.BaudRate())
			display = screen
		}
	}

	var uploader readingUploader
	var uploadTick <-chan time.Time
	var requests chan struct{}
	if cfg.Upload.Port != "" {
		port, err := serial.Open(cfg.Upload.Port, &serial.Mode{BaudRate: cfg.Upload.Baud})
		if err != nil {
			log.Printf("upload: open %s: %v (uploads disabled)", cfg.Upload.Port, err)
		} else {
			defer port.Close()
			uploader = upload.NewUploader(port)
			requests = make(chan struct{}, 1)
			go serveRequests(port, requests)
			if cfg.Upload.Interval > 0 {
				ticker := time.NewTicker(cfg.Upload.Interval)
				defer ticker.Stop()
				uploadTick = ticker.C
			}
		}
	}

	httpAddr := cfg.HTTPAddr()
	tracker := status.NewTracker(startTime, status.Config{
		PollMs:         cfg.Poll.Milliseconds(),
		DebounceMs:     cfg.Debounce.Window.Milliseconds(),
		LegacyDebounce: cfg.Debounce.Legacy,
		RefreshMs:      cfg.Refresh.Milliseconds(),
		UploadMs:       cfg.Upload.Interval.Milliseconds(),
		HeartbeatMs:    cfg.MQTT.Heartbeat.Milliseconds(),
		Broker:         cfg.MQTT.Broker,
		HTTPAddr:       httpAddr,
		LCDPort:        lcdPort,
		UploadPort:     cfg.Upload.Port,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	controller := panel.NewController(inputs, cfg.Setpoint.Initial,
		panel.Limits{Min: cfg.Setpoint.Min, Max: cfg.Setpoint.Max}, startTime)
	tracker.Update(controller.Setpoint(), nil, controller.EventCountsSnapshot())

	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	log.Printf("started: poll=%v debounce=%v legacy=%v refresh=%v broker=%s heartbeat=%v",
		cfg.Poll, cfg.Debounce.Window, cfg.Debounce.Legacy, cfg.Refresh, cfg.MQTT.Broker, cfg.MQTT.Heartbeat)

	pollTicker := time.NewTicker(cfg.Poll)
	defer pollTicker.Stop()
	refreshTicker := time.NewTicker(cfg.Refresh)
	defer refreshTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	l := &loop{
		controller:  controller,
		publisher:   publisher,
		mqttStatus:  publisher,
		tracker:     tracker,
		display:     display,
		uploader:    uploader,
		heartbeat:   cfg.MQTT.Heartbeat,
		now:         time.Now,
		tick:        pollTicker.C,
		refresh:     refreshTicker.C,
		upload:      uploadTick,
		requests:    requests,
		temperature: tempCh,
		sig:         sigCh,
	}
	return l.run()
}

// newInputs builds one debounced input per joystick direction.
func newInputs(cfg *config.Config, reader button.LevelReader, pressed button.Level, clock button.Clock) map[pins.Direction]*button.Input {
	opts := []button.Option{button.WithWindow(cfg.Debounce.Window)}
	if cfg.Debounce.Legacy {
		opts = append(opts, button.WithLegacyTiming())
	}
	inputs := make(map[pins.Direction]*button.Input, len(pins.Directions))
	for d, line := range cfg.Lines() {
		inputs[d] = button.New(line, pressed, reader, clock, opts...)
	}
	return inputs
}

// millisSince returns a wrapping millisecond clock starting at start.
func millisSince(start time.Time) button.Clock {
	return button.ClockFunc(func() uint32 {
		return uint32(time.Since(start).Milliseconds())
	})
}

// offerTemperature hands t to the run loop, replacing any reading it has not
// picked up yet.
func offerTemperature(ch chan float64, t float64) {
	for {
		select {
		case ch <- t:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// serveRequests signals requests for every "read" the PC writes to port,
// until the port is closed.
func serveRequests(port io.Reader, requests chan<- struct{}) {
	err := upload.WatchRequests(port, func() {
		select {
		case requests <- struct{}{}:
		default:
		}
	})
	var perr *serial.PortError
	if errors.As(err, &perr) && perr.Code() == serial.PortClosed {
		return
	}
	log.Printf("upload: request watcher stopped: %v", err)
}

type panelDisplay interface {
	WriteLine(line int, text string) error
}

type readingUploader interface {
	Upload(r upload.Reading) error
}

// loop owns the controller. Everything it touches runs on one goroutine;
// temperature readings arrive over a channel from the MQTT client.
type loop struct {
	controller *panel.Controller
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	display    panelDisplay    // nil = no display
	uploader   readingUploader // nil = no uploads
	heartbeat  time.Duration
	now        func() time.Time

	tick        <-chan time.Time
	refresh     <-chan time.Time
	upload      <-chan time.Time
	requests    <-chan struct{}
	temperature <-chan float64
	sig         <-chan os.Signal
}

func (l *loop) run() error {
	for {
		select {
		case s := <-l.sig:
			l.shutdown(s)
			return nil

		case t := <-l.temperature:
			l.controller.SetTemperature(t)
			if l.tracker != nil {
				l.tracker.SetTemperature(t)
			}

		case <-l.refresh:
			l.redraw()

		case <-l.upload:
			l.sendReading()

		case <-l.requests:
			l.sendReading()

		case <-l.tick:
			l.poll(l.now())
		}
	}
}

func (l *loop) poll(t time.Time) {
	for _, event := range l.controller.Process(t) {
		log.Printf("event: %s setpoint=%d changed=%v", event.Type, event.Setpoint, event.Changed)
		if err := l.publisher.Publish(event); err != nil {
			log.Printf("publish error: %v", err)
		}
	}

	if hbData := l.controller.CheckHeartbeat(t, l.heartbeat); hbData != nil {
		log.Printf("heartbeat: uptime=%v setpoint=%d up=%d down=%d left=%d right=%d click=%d",
			hbData.Uptime, hbData.Setpoint, hbData.Counts.Up, hbData.Counts.Down,
			hbData.Counts.Left, hbData.Counts.Right, hbData.Counts.Click)

		hbEvent := mqtt.SystemEvent{
			Timestamp: hbData.Timestamp,
			Event:     "HEARTBEAT",
		}
		if l.tracker != nil {
			if net := readNetworkInfo(); net != nil {
				l.tracker.SetNetwork(net)
			}
			l.updateTracker()
			hbEvent.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "HEARTBEAT", "")
		}
		if err := l.publisher.PublishSystem(hbEvent); err != nil {
			log.Printf("heartbeat publish error: %v", err)
		}
	}

	l.updateTracker()
}

// redraw writes the display and re-arms held keys so they repeat.
func (l *loop) redraw() {
	if l.display != nil {
		top, bottom := l.controller.DisplayLines()
		if err := l.display.WriteLine(0, top); err != nil {
			log.Printf("lcd: %v", err)
		} else if err := l.display.WriteLine(1, bottom); err != nil {
			log.Printf("lcd: %v", err)
		}
	}
	l.controller.Refresh()
}

func (l *loop) sendReading() {
	if l.uploader == nil {
		return
	}
	temp, ok := l.controller.Temperature()
	if !ok {
		return
	}
	reading, err := upload.FromCelsius(temp, l.controller.Setpoint())
	if err != nil {
		log.Printf("upload: %v", err)
		return
	}
	if err := l.uploader.Upload(reading); err != nil {
		log.Printf("upload: %v", err)
	}
}

func (l *loop) shutdown(s os.Signal) {
	log.Printf("received %v, shutting down", s)
	signalName := "UNKNOWN"
	if s == syscall.SIGINT {
		signalName = "SIGINT"
	} else if s == syscall.SIGTERM {
		signalName = "SIGTERM"
	}
	event := mqtt.SystemEvent{
		Timestamp: l.now(),
		Event:     "SHUTDOWN",
		Reason:    signalName,
		Retained:  true,
	}
	if l.tracker != nil {
		l.updateTracker()
		event.RawPayload = status.FormatStatusEvent(l.tracker.Snapshot(), "SHUTDOWN", signalName)
	}
	if err := l.publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
}

func (l *loop) updateTracker() {
	if l.tracker == nil {
		return
	}
	l.tracker.Update(l.controller.Setpoint(), l.controller.Pressed(), l.controller.EventCountsSnapshot())
	if l.mqttStatus != nil {
		l.tracker.SetMQTTConnected(l.mqttStatus.IsConnected())
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
