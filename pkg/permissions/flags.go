package permissions

import "sort"

// Named permission flags, one bit each. Values match the upstream directory
// service's wire protocol and must never be renumbered.
const (
	CreateInstantInvite Permissions = 1 << 0
	KickMembers         Permissions = 1 << 1
	BanMembers          Permissions = 1 << 2
	Administrator       Permissions = 1 << 3
	ManageChannels      Permissions = 1 << 4
	ManageGuild         Permissions = 1 << 5
	AddReactions        Permissions = 1 << 6
	ViewAuditLog        Permissions = 1 << 7
	PrioritySpeaker     Permissions = 1 << 8
	Stream              Permissions = 1 << 9
	ViewChannel         Permissions = 1 << 10
	SendMessages        Permissions = 1 << 11
	SendTTSMessages     Permissions = 1 << 12
	ManageMessages      Permissions = 1 << 13
	EmbedLinks          Permissions = 1 << 14
	AttachFiles         Permissions = 1 << 15
	ReadMessageHistory  Permissions = 1 << 16
	MentionEveryone     Permissions = 1 << 17
	UseExternalEmojis   Permissions = 1 << 18
	ViewGuildInsights   Permissions = 1 << 19
	Connect             Permissions = 1 << 20
	Speak               Permissions = 1 << 21
	MuteMembers         Permissions = 1 << 22
	DeafenMembers       Permissions = 1 << 23
	MoveMembers         Permissions = 1 << 24
	UseVAD              Permissions = 1 << 25
	ChangeNickname      Permissions = 1 << 26
	ManageNicknames     Permissions = 1 << 27
	ManageRoles         Permissions = 1 << 28
	ManageWebhooks      Permissions = 1 << 29
	ManageExpressions   Permissions = 1 << 30
	UseApplicationCmds  Permissions = 1 << 31
	RequestToSpeak      Permissions = 1 << 32
	ManageEvents        Permissions = 1 << 33
	ManageThreads       Permissions = 1 << 34
	CreatePublicThreads Permissions = 1 << 35
	CreatePrivThreads   Permissions = 1 << 36
	UseExternalStickers Permissions = 1 << 37
	SendThreadMessages  Permissions = 1 << 38
	UseEmbeddedActivity Permissions = 1 << 39
	ModerateMembers     Permissions = 1 << 40
	ViewMonetization    Permissions = 1 << 41
	UseSoundboard       Permissions = 1 << 42
	CreateExpressions   Permissions = 1 << 43
	CreateEvents        Permissions = 1 << 44
	UseExternalSounds   Permissions = 1 << 45
	SendVoiceMessages   Permissions = 1 << 46
	SendPolls           Permissions = 1 << 49
	UseExternalApps     Permissions = 1 << 50
)

// flagCatalog maps wire-protocol flag names to bit values. Read-only after
// package init.
var flagCatalog = map[string]Permissions{
	"CREATE_INSTANT_INVITE":         CreateInstantInvite,
	"KICK_MEMBERS":                  KickMembers,
	"BAN_MEMBERS":                   BanMembers,
	"ADMINISTRATOR":                 Administrator,
	"MANAGE_CHANNELS":               ManageChannels,
	"MANAGE_GUILD":                  ManageGuild,
	"ADD_REACTIONS":                 AddReactions,
	"VIEW_AUDIT_LOG":                ViewAuditLog,
	"PRIORITY_SPEAKER":              PrioritySpeaker,
	"STREAM":                        Stream,
	"VIEW_CHANNEL":                  ViewChannel,
	"SEND_MESSAGES":                 SendMessages,
	"SEND_TTS_MESSAGES":             SendTTSMessages,
	"MANAGE_MESSAGES":               ManageMessages,
	"EMBED_LINKS":                   EmbedLinks,
	"ATTACH_FILES":                  AttachFiles,
	"READ_MESSAGE_HISTORY":          ReadMessageHistory,
	"MENTION_EVERYONE":              MentionEveryone,
	"USE_EXTERNAL_EMOJIS":           UseExternalEmojis,
	"VIEW_GUILD_INSIGHTS":           ViewGuildInsights,
	"CONNECT":                       Connect,
	"SPEAK":                         Speak,
	"MUTE_MEMBERS":                  MuteMembers,
	"DEAFEN_MEMBERS":                DeafenMembers,
	"MOVE_MEMBERS":                  MoveMembers,
	"USE_VAD":                       UseVAD,
	"CHANGE_NICKNAME":               ChangeNickname,
	"MANAGE_NICKNAMES":              ManageNicknames,
	"MANAGE_ROLES":                  ManageRoles,
	"MANAGE_WEBHOOKS":               ManageWebhooks,
	"MANAGE_GUILD_EXPRESSIONS":      ManageExpressions,
	"USE_APPLICATION_COMMANDS":      UseApplicationCmds,
	"REQUEST_TO_SPEAK":              RequestToSpeak,
	"MANAGE_EVENTS":                 ManageEvents,
	"MANAGE_THREADS":                ManageThreads,
	"CREATE_PUBLIC_THREADS":         CreatePublicThreads,
	"CREATE_PRIVATE_THREADS":        CreatePrivThreads,
	"USE_EXTERNAL_STICKERS":         UseExternalStickers,
	"SEND_MESSAGES_IN_THREADS":      SendThreadMessages,
	"USE_EMBEDDED_ACTIVITIES":       UseEmbeddedActivity,
	"MODERATE_MEMBERS":              ModerateMembers,
	"VIEW_CREATOR_MONETIZATION_ANALYTICS": ViewMonetization,
	"USE_SOUNDBOARD":                UseSoundboard,
	"CREATE_GUILD_EXPRESSIONS":      CreateExpressions,
	"CREATE_EVENTS":                 CreateEvents,
	"USE_EXTERNAL_SOUNDS":           UseExternalSounds,
	"SEND_VOICE_MESSAGES":           SendVoiceMessages,
	"SEND_POLLS":                    SendPolls,
	"USE_EXTERNAL_APPS":             UseExternalApps,
}

// Flags returns the complete flag catalog as a fresh name→value map. The
// returned map is the caller's to mutate.
func Flags() map[string]Permissions {
	out := make(map[string]Permissions, len(flagCatalog))
	for name, bit := range flagCatalog {
		out[name] = bit
	}
	return out
}

// FlagNames returns all catalog flag names sorted ascending.
func FlagNames() []string {
	names := make([]string, 0, len(flagCatalog))
	for name := range flagCatalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the bit value for a named flag.
func Lookup(name string) (Permissions, bool) {
	bit, ok := flagCatalog[name]
	return bit, ok
}
