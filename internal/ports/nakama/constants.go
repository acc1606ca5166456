package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// RpcMatchInvite is the Nakama RPC id clients call to mint a private match invite token.
	RpcMatchInvite = "match_invite"

	// MatchNameDominoes is the authoritative match handler name registered with Nakama.
	MatchNameDominoes = "dominoes_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame      int64 = 1
	OpPlaceTile      int64 = 2
	OpDrawTile       int64 = 3
	OpPassTurn       int64 = 4
	OpRequestNewGame int64 = 5

	// Server -> Client events
	OpPlayerJoined int64 = 101
	OpPlayerLeft   int64 = 102
	OpGameStarted  int64 = 103
	OpHandDealt    int64 = 104 // sent privately
	OpTilePlaced   int64 = 105
	OpTileDrawn    int64 = 106
	OpTileReceived int64 = 107 // sent privately
	OpTurnPassed   int64 = 108
	OpGameEnded    int64 = 109
	OpGameError    int64 = 110
)
