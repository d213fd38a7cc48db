// Terminal client for poking at the gateway by hand. Not part of the bot
// itself; run it against a local server to drive a table from the shell.
package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	msgTypeNewGame      = 101
	msgTypeJoinGame     = 102
	msgTypeQuitGame     = 103
	msgTypeStartGame    = 104
	msgTypeGameAction   = 105
	msgTypeConfirmReply = 106

	msgTypeChannelState   = 201
	msgTypePrivateNotice  = 202
	msgTypeConfirmRequest = 203
	msgTypeError          = 500
)

var (
	addr    = flag.String("addr", "localhost:8080", "gateway address")
	player  = flag.String("player", "cli", "player id")
	channel = flag.String("channel", "cli-channel", "channel id")
)

type request struct {
	PlayerID  string         `json:"player_id"`
	ChannelID string         `json:"channel_id"`
	GameType  string         `json:"game_type,omitempty"`
	CPUSeats  int            `json:"cpu_seats,omitempty"`
	Kind      string         `json:"kind,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Token     string         `json:"token,omitempty"`
	Accept    bool           `json:"accept,omitempty"`
}

func send(c *websocket.Conn, msgID uint16, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func main() {
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s as %s", u.String(), *player)

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	var tokenMu sync.Mutex
	var lastToken string

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 4 {
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			data := message[4:]

			switch msgID {
			case msgTypeChannelState:
				var state struct {
					Summary  string `json:"summary"`
					Controls struct {
						Buttons []string `json:"buttons"`
					} `json:"controls"`
				}
				if json.Unmarshal(data, &state) == nil {
					log.Printf("\n%s\n[%s]", state.Summary, strings.Join(state.Controls.Buttons, " "))
				}
			case msgTypePrivateNotice:
				var notice struct {
					Text string `json:"text"`
				}
				if json.Unmarshal(data, &notice) == nil {
					log.Printf("(private) %s", notice.Text)
				}
			case msgTypeConfirmRequest:
				var ask struct {
					Token  string `json:"token"`
					Prompt string `json:"prompt"`
				}
				if json.Unmarshal(data, &ask) == nil {
					tokenMu.Lock()
					lastToken = ask.Token
					tokenMu.Unlock()
					log.Printf("%s  (yes/no)", ask.Prompt)
				}
			case msgTypeError:
				var e struct {
					Message string `json:"message"`
				}
				if json.Unmarshal(data, &e) == nil {
					log.Printf("error: %s", e.Message)
				}
			default:
				log.Printf("<- (ID %d): %s", msgID, string(data))
			}
		}
	}()

	log.Println("Commands: new <game> [cpus] | join | start | bet N | hit | stand | play N [color] | draw | show | inc | showdown | yes | no | quit")

	base := request{PlayerID: *player, ChannelID: *channel}
	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			fields := strings.Fields(text)
			if len(fields) == 0 {
				continue
			}

			req := base
			var msgID uint16
			switch fields[0] {
			case "new":
				if len(fields) < 2 {
					log.Println("usage: new <counter|blackjack|poker|uno> [cpus]")
					continue
				}
				req.GameType = fields[1]
				if len(fields) > 2 {
					req.CPUSeats, _ = strconv.Atoi(fields[2])
				}
				msgID = msgTypeNewGame
			case "join":
				msgID = msgTypeJoinGame
			case "quit":
				msgID = msgTypeQuitGame
			case "start":
				msgID = msgTypeStartGame
			case "bet":
				if len(fields) < 2 {
					log.Println("usage: bet N")
					continue
				}
				amount, _ := strconv.Atoi(fields[1])
				req.Kind = "bet"
				req.Payload = map[string]any{"amount": amount}
				msgID = msgTypeGameAction
			case "play":
				if len(fields) < 2 {
					log.Println("usage: play N [color]")
					continue
				}
				index, _ := strconv.Atoi(fields[1])
				req.Kind = "play"
				req.Payload = map[string]any{"index": index}
				if len(fields) > 2 {
					req.Payload["color"] = fields[2]
				}
				msgID = msgTypeGameAction
			case "hit", "stand", "draw", "showdown":
				req.Kind = fields[0]
				msgID = msgTypeGameAction
			case "show":
				req.Kind = "show-hand"
				msgID = msgTypeGameAction
			case "inc":
				req.Kind = "increment"
				msgID = msgTypeGameAction
			case "yes", "no":
				tokenMu.Lock()
				req.Token = lastToken
				tokenMu.Unlock()
				if req.Token == "" {
					log.Println("nothing to confirm")
					continue
				}
				req.Accept = fields[0] == "yes"
				msgID = msgTypeConfirmReply
			default:
				log.Printf("unknown command %q", fields[0])
				continue
			}

			if err := send(c, msgID, req); err != nil {
				log.Println("Write error:", err)
				return
			}
		}
	}
}
