package xkb

import (
	"errors"
	"testing"
)

const testKeymap = `xkb_keymap {
xkb_keycodes "evdev+aliases(qwerty)" {
	minimum = 8;
	maximum = 255;
	<ESC>                = 9;
	<AE01>               = 10;
	<AC01>               = 38;
	<LFSH>               = 50;
	<LALT>               = 64;
	indicator 1 = "Caps Lock";
	alias <ALT>  = <LALT>;
	alias <AC12> = <BKSL>;
};

xkb_types "complete" {
	type "TWO_LEVEL" {
		modifiers= Shift;
		map[Shift]= Level2;
		level_name[Level1]= "Base";
		level_name[Level2]= "Shift";
	};
};

xkb_compat "complete" {
	interpret Shift_L+AnyOf(all) {
		action= SetMods(modifiers=Shift,clearLocks);
	};
};

xkb_symbols "pc+us+inet(evdev)" {
	name[group1]="English (US)";

	key <ESC>                {	[          Escape ] };
	key <AE01>               {	[               1,          exclam ] };
	key <AC01>               {
		type= "ALPHABETIC",
		symbols[Group1]= [               a,               A ],
		symbols[Group2]= [      Cyrillic_ef,     Cyrillic_EF ]
	};
	key <LFSH>               {
		type= "ONE_LEVEL",
		symbols[Group1]= [         Shift_L ],
		actions[Group1]= [ SetMods(modifiers=Shift) ]
	};
	key <LALT>               {	[           Alt_L,          Meta_L ] };
	modifier_map Shift { <LFSH> };
};
};
`

func TestParseEscape(t *testing.T) {
	km, err := Parse([]byte(testKeymap + "\x00"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	code, ok := km.Keycode("ESC")
	if !ok || code != 9 {
		t.Fatalf("ESC keycode = %d, %v; want 9", code, ok)
	}
	if got := km.Lookup(EvdevEscape, State{}); got != "Escape" {
		t.Fatalf("evdev %d = %q, want Escape", EvdevEscape, got)
	}
}

func TestParseLevelsAndGroups(t *testing.T) {
	km, err := Parse([]byte(testKeymap))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	tests := []struct {
		name    string
		keycode uint32
		group   int
		level   int
		want    string
	}{
		{"digit", 10, 0, 0, "1"},
		{"digit shifted", 10, 0, 1, "exclam"},
		{"named group", 38, 0, 0, "a"},
		{"named group shifted", 38, 0, 1, "A"},
		{"second group", 38, 1, 1, "Cyrillic_EF"},
		{"group wraps", 10, 1, 0, "1"},
		{"level falls back", 9, 0, 1, "Escape"},
		{"actions ignored", 50, 0, 0, "Shift_L"},
		{"alias target", 64, 0, 1, "Meta_L"},
		{"unknown key", 200, 0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := km.Keysym(tt.keycode, tt.group, tt.level); got != tt.want {
				t.Errorf("Keysym(%d, %d, %d) = %q, want %q", tt.keycode, tt.group, tt.level, got, tt.want)
			}
		})
	}
}

func TestParseAlias(t *testing.T) {
	km, err := Parse([]byte(testKeymap))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if code, ok := km.Keycode("ALT"); !ok || code != 64 {
		t.Errorf("ALT = %d, %v; want 64", code, ok)
	}
	if _, ok := km.Keycode("AC12"); ok {
		t.Errorf("alias to an undefined key should be dropped")
	}
}

func TestLookupShift(t *testing.T) {
	km, err := Parse([]byte(testKeymap))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var st State
	st.Update(ModShift, 0, 0, 0)
	if got := km.Lookup(30, st); got != "A" {
		t.Errorf("shift+a = %q, want A", got)
	}
	st.Update(0, 0, ModLock, 0)
	if got := km.Lookup(30, st); got != "a" {
		t.Errorf("caps lock alone should not shift, got %q", got)
	}
}

func TestParseMissingSection(t *testing.T) {
	_, err := Parse([]byte(`xkb_keymap { xkb_keycodes "x" { <ESC> = 9; }; };`))
	if !errors.Is(err, ErrSection) {
		t.Fatalf("expected ErrSection, got %v", err)
	}
}
