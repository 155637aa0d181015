package protocol

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseInboundAuth(t *testing.T) {
	msg, err := ParseInbound([]byte(`{"type":"auth","action":"login","username":"alice","password":"secret1"}`))
	if err != nil {
		t.Fatal(err)
	}
	if msg.Type != "auth" || msg.Action != "login" || msg.Username != "alice" {
		t.Errorf("parsed %+v", msg)
	}
}

func TestParseInboundCommand(t *testing.T) {
	msg, err := ParseInbound([]byte(`{"cmd":"move","direction":"up"}`))
	if err != nil {
		t.Fatal(err)
	}
	if msg.Cmd != "move" || msg.Direction != "up" {
		t.Errorf("parsed %+v", msg)
	}

	msg, err = ParseInbound([]byte(`{"cmd":"forge","attribute_index":2}`))
	if err != nil {
		t.Fatal(err)
	}
	if msg.AttributeIndex == nil || *msg.AttributeIndex != 2 {
		t.Error("attribute_index not parsed")
	}

	if _, err := ParseInbound([]byte(`not json`)); err == nil {
		t.Error("garbage must not parse")
	}
}

func TestInventoryEntryMarshalsAsPair(t *testing.T) {
	data, err := json.Marshal(InventoryEntry{"小血瓶", 3})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `["小血瓶",3]` {
		t.Errorf("marshaled %s", data)
	}
}

func TestCombatOmitsQuietFields(t *testing.T) {
	data, err := json.Marshal(Combat{Type: TypeCombat, MonsterName: "史莱姆", DamageDealt: 38, MonsterHP: 42, MonsterMaxHP: 80, PlayerHP: 495})
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, absent := range []string{"combo_hits", "percent_damage", "thorns_damage", "level_up"} {
		if strings.Contains(s, absent) {
			t.Errorf("quiet field %s serialized: %s", absent, s)
		}
	}
	if !strings.Contains(s, `"monster_dead":false`) {
		t.Errorf("monster_dead must always serialize: %s", s)
	}
}
