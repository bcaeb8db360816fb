// Command ws_smoke connects to a running server, announces a profile, posts a
// message into a room and waits for it to come back. Useful as a quick
// end-to-end check against a local instance.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/salonlabs/salon-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "tester", "username to announce with hello")
	room := flag.String("room", "general", "room id")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(msgType string, data any) error {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", msgType, err)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: msgType, Data: payload}); err != nil {
			return fmt.Errorf("send %s: %w", msgType, err)
		}
		return nil
	}

	if err := send(proto.InboundTypeHello, proto.HelloData{Username: *user}); err != nil {
		return err
	}
	if *room != "general" {
		if err := send(proto.InboundTypeJoin, proto.RoomData{Room: *room}); err != nil {
			return err
		}
	}
	if err := send(proto.InboundTypeMsg, proto.MsgData{Room: *room, Content: *text}); err != nil {
		return err
	}

	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		fmt.Printf("Received outbound: type=%s", outbound.Type)
		if outbound.Event != "" {
			fmt.Printf(" event=%s", outbound.Event)
		}
		fmt.Println()

		if outbound.Error != nil {
			return fmt.Errorf("server error: %s (%s)", outbound.Error.Msg, outbound.Error.Code)
		}

		raw, err := json.Marshal(outbound.Data)
		if err != nil {
			return fmt.Errorf("marshal outbound data: %w", err)
		}

		switch outbound.Event {
		case proto.EventMessage:
			var evt proto.EventMessageData
			if unmarshalErr := json.Unmarshal(raw, &evt); unmarshalErr != nil {
				fmt.Printf("Raw data: %s\n", string(raw))
				return fmt.Errorf("unmarshal message: %w", unmarshalErr)
			}
			fmt.Printf("Message: room=%s sender=%s content=%q ts=%d\n", evt.Room, evt.Sender, evt.Content, evt.TS)
			if evt.Content == *text {
				return nil
			}
		case proto.EventUserJoined:
			var evt proto.EventUserData
			if err := json.Unmarshal(raw, &evt); err == nil {
				fmt.Printf("Join: room=%s user=%s\n", evt.Room, evt.User)
			}
		case proto.EventRoomWarning:
			var evt proto.EventRoomWarningData
			if err := json.Unmarshal(raw, &evt); err == nil {
				fmt.Printf("Warning: room=%s closes in %ds\n", evt.Room, evt.SecondsRemaining)
			}
		default:
			// keep looping for our own message
		}
	}
}
