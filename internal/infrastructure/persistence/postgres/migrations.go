package postgres

// Embedded migrations for the Tally Hub schema. Groups and players are
// owned by the account/invite module; the stats engine only reads them,
// but the schema lives here because this service owns the database.

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_groups_and_players",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_games",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_matches_and_scores",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
	}
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS groups (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS players (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL CHECK (char_length(name) BETWEEN 1 AND 50),
	avatar TEXT NOT NULL DEFAULT '',
	avatar_colour TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS group_members (
	group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
	player_id UUID NOT NULL REFERENCES players(id) ON DELETE CASCADE,
	joined_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
	PRIMARY KEY (group_id, player_id)
);

CREATE INDEX IF NOT EXISTS idx_group_members_player ON group_members(player_id);
`

const migration001Down = `
DROP TABLE IF EXISTS group_members;
DROP TABLE IF EXISTS players;
DROP TABLE IF EXISTS groups;
`

const migration002Up = `
CREATE TABLE IF NOT EXISTS games (
	id UUID PRIMARY KEY,
	group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
	name TEXT NOT NULL CHECK (char_length(name) BETWEEN 3 AND 50),
	ranking_metric TEXT NOT NULL CHECK (ranking_metric IN ('win_rate', 'average_score')),
	players_per_match INTEGER NOT NULL CHECK (players_per_match BETWEEN 2 AND 50),
	created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_games_group ON games(group_id);
`

const migration002Down = `
DROP TABLE IF EXISTS games;
`

const migration003Up = `
CREATE TABLE IF NOT EXISTS matches (
	id UUID PRIMARY KEY,
	game_id UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	played_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_matches_game_played ON matches(game_id, played_at DESC);

CREATE TABLE IF NOT EXISTS match_scores (
	match_id UUID NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
	player_id UUID NOT NULL REFERENCES players(id) ON DELETE CASCADE,
	score INTEGER NOT NULL,
	PRIMARY KEY (match_id, player_id)
);

CREATE INDEX IF NOT EXISTS idx_match_scores_player ON match_scores(player_id);
`

const migration003Down = `
DROP TABLE IF EXISTS match_scores;
DROP TABLE IF EXISTS matches;
`
