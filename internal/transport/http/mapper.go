package http

import (
	"encoding/json"

	"github.com/salonlabs/salon-server/internal/core"
	"github.com/salonlabs/salon-server/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeHello:
		var hello proto.HelloData
		if err := json.Unmarshal(inbound.Data, &hello); err != nil {
			return nil, nil, err
		}
		if hello.Username == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "username is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandConnect,
			Profile: core.Profile{
				Username: hello.Username,
				Age:      hello.Age,
				Gender:   hello.Gender,
				City:     hello.City,
				Country:  hello.Country,
				Avatar:   hello.Avatar,
			},
		}, nil, nil
	case proto.InboundTypeMsg:
		var msg proto.MsgData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		if msg.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandSendMessage,
			Room: msg.Room,
			Message: core.Message{
				Content:  msg.Content,
				Type:     core.MessageType(msg.Type),
				MediaRef: msg.MediaRef,
			},
		}, nil, nil
	case proto.InboundTypeCreateRoom:
		var create proto.CreateRoomData
		if err := json.Unmarshal(inbound.Data, &create); err != nil {
			return nil, nil, err
		}
		if create.Name == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "name is required"}, nil
		}
		return &core.Command{
			Kind:    core.CommandCreateRoom,
			Name:    create.Name,
			Private: create.Private,
		}, nil, nil
	case proto.InboundTypeJoin, proto.InboundTypeLeave, proto.InboundTypeCloseRoom,
		proto.InboundTypeTypingStart, proto.InboundTypeTypingStop:
		var room proto.RoomData
		if err := json.Unmarshal(inbound.Data, &room); err != nil {
			return nil, nil, err
		}
		if room.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		kind := map[string]core.CommandKind{
			proto.InboundTypeJoin:        core.CommandJoinRoom,
			proto.InboundTypeLeave:       core.CommandLeaveRoom,
			proto.InboundTypeCloseRoom:   core.CommandCloseRoom,
			proto.InboundTypeTypingStart: core.CommandStartTyping,
			proto.InboundTypeTypingStop:  core.CommandStopTyping,
		}[inbound.Type]
		return &core.Command{Kind: kind, Room: room.Room}, nil, nil
	case proto.InboundTypeInvite:
		var invite proto.InviteData
		if err := json.Unmarshal(inbound.Data, &invite); err != nil {
			return nil, nil, err
		}
		if invite.Room == "" || invite.Target == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room and target are required"}, nil
		}
		return &core.Command{
			Kind:   core.CommandInvite,
			Room:   invite.Room,
			Target: invite.Target,
		}, nil, nil
	case proto.InboundTypeReport:
		var report proto.ReportData
		if err := json.Unmarshal(inbound.Data, &report); err != nil {
			return nil, nil, err
		}
		if report.Target == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "target is required"}, nil
		}
		return &core.Command{
			Kind:   core.CommandReport,
			Target: report.Target,
			Reason: report.Reason,
		}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventConnected:
		data := proto.EventConnectedData{}
		if event.Self != nil {
			data.Self = participantData(*event.Self)
		}
		return outboundEvent(proto.EventConnected, data)
	case core.EventPresence:
		online := make([]proto.ParticipantData, 0, len(event.Online))
		for _, p := range event.Online {
			online = append(online, participantData(p))
		}
		return outboundEvent(proto.EventPresence, proto.EventPresenceData{
			User:   event.User,
			Online: online,
		})
	case core.EventRoomCreated:
		return outboundEvent(proto.EventRoomCreated, proto.EventRoomCreatedData{
			Room: roomInfoData(event.RoomInfo),
		})
	case core.EventRoomClosed:
		return outboundEvent(proto.EventRoomClosed, proto.EventRoomClosedData{
			Room:     event.Room,
			Reason:   event.Reason,
			Redirect: event.Redirect,
		})
	case core.EventRoomWarning:
		return outboundEvent(proto.EventRoomWarning, proto.EventRoomWarningData{
			Room:             event.Room,
			SecondsRemaining: int64(event.Remaining.Seconds()),
		})
	case core.EventMessage:
		return outboundEvent(proto.EventMessage, messageData(event.Message))
	case core.EventHistory:
		messages := make([]proto.EventMessageData, 0, len(event.Messages))
		for _, msg := range event.Messages {
			messages = append(messages, messageData(msg))
		}
		return outboundEvent(proto.EventHistory, proto.EventHistoryData{
			Room:     event.Room,
			Messages: messages,
		})
	case core.EventUserJoined:
		return outboundEvent(proto.EventUserJoined, userData(event))
	case core.EventUserLeft:
		return outboundEvent(proto.EventUserLeft, userData(event))
	case core.EventUserBanned:
		return outboundEvent(proto.EventUserBanned, userData(event))
	case core.EventInvited:
		return outboundEvent(proto.EventInvited, proto.EventInvitedData{
			Room:     roomInfoData(event.RoomInfo),
			From:     event.User,
			Username: event.Username,
		})
	case core.EventTyping:
		return outboundEvent(proto.EventTyping, proto.EventTypingData{
			Room:     event.Room,
			User:     event.User,
			Username: event.Username,
			Typing:   event.Typing,
		})
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func outboundEvent(name string, data any) proto.Outbound {
	return proto.Outbound{Type: proto.OutboundTypeEvent, Event: name, Data: data}
}

func userData(event *core.Event) proto.EventUserData {
	return proto.EventUserData{
		Room:     event.Room,
		User:     event.User,
		Username: event.Username,
	}
}

func participantData(p core.Participant) proto.ParticipantData {
	return proto.ParticipantData{
		ID:       p.ID,
		Username: p.Username,
		Age:      p.Age,
		Gender:   p.Gender,
		City:     p.City,
		Country:  p.Country,
		Avatar:   p.Avatar,
		Online:   p.Online,
	}
}

func roomInfoData(r *core.RoomInfo) proto.RoomInfoData {
	if r == nil {
		return proto.RoomInfoData{}
	}
	return proto.RoomInfoData{
		ID:      r.ID,
		Name:    r.Name,
		Private: r.Private,
		Owner:   r.OwnerID,
		Members: r.Members,
	}
}

func messageData(m core.Message) proto.EventMessageData {
	return proto.EventMessageData{
		ID:       m.ID,
		Room:     m.Room,
		SenderID: m.SenderID,
		Sender:   m.Sender,
		Content:  m.Content,
		Type:     string(m.Type),
		MediaRef: m.MediaRef,
		TS:       m.CreatedAt.Unix(),
	}
}
