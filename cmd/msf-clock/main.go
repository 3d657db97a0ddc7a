// Command msf-clock decodes the MSF 60 kHz time broadcast from a GPIO
// receiver and publishes each decoded minute to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sweeney/msf-clock/internal/config"
	"github.com/sweeney/msf-clock/internal/gpio"
	"github.com/sweeney/msf-clock/internal/metrics"
	"github.com/sweeney/msf-clock/internal/mqtt"
	"github.com/sweeney/msf-clock/internal/msf"
	"github.com/sweeney/msf-clock/internal/status"
	"github.com/sweeney/msf-clock/internal/trace"
	"github.com/sweeney/msf-clock/internal/web"
)

func main() {
	def := config.Default()

	configPath := flag.String("config", "", "YAML configuration file (optional)")
	chip := flag.String("chip", def.Chip, "GPIO chip name")
	pinData := flag.Int("pin-data", def.DataPin, "BCM pin number for receiver data")
	pinEnable := flag.Int("pin-enable", def.EnablePin, "BCM pin number for receiver enable, active low (-1 to disable)")
	pinLED := flag.Int("pin-led", def.LEDPin, "BCM pin number for carrier LED (-1 to disable)")
	broker := flag.String("broker", def.Broker, "MQTT broker address")
	clientID := flag.String("client-id", def.ClientID, "MQTT client ID")
	heartbeat := flag.Duration("heartbeat", time.Duration(def.Heartbeat), "Heartbeat interval (0 to disable)")
	httpAddr := flag.String("http", def.HTTPAddr, "HTTP status address (empty to disable)")
	traceMask := flag.String("trace", def.Trace, `Trace categories, comma-separated ("all", "none")`)
	tracePort := flag.String("trace-port", def.TracePort, "Serial device for trace output (empty for stderr)")
	traceBaud := flag.Int("trace-baud", def.TraceBaud, "Serial trace baud rate")
	probe := flag.Bool("probe", false, "Read the carrier level once and exit")

	flag.Parse()

	cfg := def
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("fatal: %v", err)
		}
	}

	// Explicitly set flags win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "chip":
			cfg.Chip = *chip
		case "pin-data":
			cfg.DataPin = *pinData
		case "pin-enable":
			cfg.EnablePin = *pinEnable
		case "pin-led":
			cfg.LEDPin = *pinLED
		case "broker":
			cfg.Broker = *broker
		case "client-id":
			cfg.ClientID = *clientID
		case "heartbeat":
			cfg.Heartbeat = config.Duration(*heartbeat)
		case "http":
			cfg.HTTPAddr = *httpAddr
		case "trace":
			cfg.Trace = *traceMask
		case "trace-port":
			cfg.TracePort = *tracePort
		case "trace-baud":
			cfg.TraceBaud = *traceBaud
		}
	})

	if err := run(cfg, *probe); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config.Config, probe bool) error {
	mask, err := trace.ParseMask(cfg.Trace)
	if err != nil {
		return err
	}
	var traceSink io.Writer
	if cfg.TracePort != "" {
		port, err := trace.OpenSerial(cfg.TracePort, cfg.TraceBaud)
		if err != nil {
			return fmt.Errorf("open trace port: %w", err)
		}
		defer port.Close()
		traceSink = port
	}
	logger := trace.New(mask, traceSink)

	// Initialize GPIO
	src, err := gpio.NewRealSource(cfg.Chip, cfg.DataPin, cfg.EnablePin, cfg.LEDPin)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer src.Close()

	if err := src.EnableReceiver(true); err != nil {
		return fmt.Errorf("enable receiver: %w", err)
	}

	// Probe mode
	if probe {
		// Give the receiver a moment to settle after power-up.
		time.Sleep(100 * time.Millisecond)
		on, err := src.CarrierOn()
		if err != nil {
			return fmt.Errorf("probe carrier: %w", err)
		}
		fmt.Printf("carrier: %s\n", stateString(on))
		return nil
	}

	decoder := msf.New(logger)

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(cfg.Broker, cfg.ClientID)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		Chip:        cfg.Chip,
		DataPin:     cfg.DataPin,
		EnablePin:   cfg.EnablePin,
		LEDPin:      cfg.LEDPin,
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTPAddr,
		HeartbeatMs: time.Duration(cfg.Heartbeat).Milliseconds(),
		Trace:       cfg.Trace,
	})

	// Publish startup event with full status snapshot
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

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		metrics.Register(prometheus.DefaultRegisterer, decoder, src.Dropped)
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	log.Printf("started: chip=%s data=%d enable=%d led=%d broker=%s heartbeat=%v",
		cfg.Chip, cfg.DataPin, cfg.EnablePin, cfg.LEDPin, cfg.Broker, time.Duration(cfg.Heartbeat))

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(src.Edges(), src.Dropped, decoder, publisher, publisher, tracker,
		time.Duration(cfg.Heartbeat), time.Now, ticker.C, sigCh)
}

func runLoop(edges <-chan gpio.Edge, dropped func() uint64, decoder *msf.Decoder, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	lastHeartbeat := now()

	// Sync transitions become system events. The listener runs on this
	// goroutine, inside OnEdge.
	decoder.SetListener(func(kind msf.EventKind) {
		name := "SYNC"
		if kind == msf.EventSyncLost {
			name = "SYNC_LOST"
		}
		log.Printf("event: %s", name)
		event := mqtt.SystemEvent{
			Timestamp: now(),
			Event:     name,
		}
		if err := publisher.PublishSystem(event); err != nil {
			log.Printf("publish error: %v", err)
			// Don't crash on publish failure
		}
	}, msf.EventSync|msf.EventSyncLost)

	for {
		// Drain pending edges first so decoding never falls behind the
		// ticker or heartbeat work.
		select {
		case e, ok := <-edges:
			if !ok {
				return nil
			}
			decoder.OnEdge(edgeLevel(e), e.Time)
			continue
		default:
		}

		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				tracker.Update(decoder.State(), decoder.Counts(), dropped())
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case e, ok := <-edges:
			if !ok {
				return nil
			}
			decoder.OnEdge(edgeLevel(e), e.Time)

		case <-tick:
			t := now()

			if dt, ok := decoder.Consume(); ok {
				log.Printf("decoded: %s", dt)
				if err := publisher.PublishTime(t, dt); err != nil {
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
				if tracker != nil {
					tracker.SetTime(dt, t)
				}
			}

			if tracker != nil {
				tracker.Update(decoder.State(), decoder.Counts(), dropped())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			// Check for heartbeat
			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				c := decoder.Counts()
				log.Printf("heartbeat: state=%v decoded=%d rejected=%d edges=%d",
					decoder.State(), c.FramesDecoded, c.FramesRejected, c.Edges)

				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

func edgeLevel(e gpio.Edge) msf.Level {
	if e.CarrierOn {
		return msf.CarrierOn
	}
	return msf.CarrierOff
}

func stateString(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
