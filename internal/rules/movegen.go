package rules

// GenerateLegalMoves returns every legal move for the side to move.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generateMoves(ml)
	return p.filterLegal(ml)
}

// GeneratePseudoLegalMoves returns every pseudo-legal move; some may leave
// the mover's own king in check.
func (p *Position) GeneratePseudoLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generateMoves(ml)
	return ml
}

// pieceAttacks dispatches to the attack table for one non-pawn piece type.
func pieceAttacks(pt PieceType, from Square, occupied Bitboard) Bitboard {
	switch pt {
	case Knight:
		return KnightAttacks(from)
	case Bishop:
		return BishopAttacks(from, occupied)
	case Rook:
		return RookAttacks(from, occupied)
	case Queen:
		return QueenAttacks(from, occupied)
	default:
		return KingAttacks(from)
	}
}

func (p *Position) generateMoves(ml *MoveList) {
	us := p.SideToMove
	occupied := p.AllOccupied
	enemies := p.Occupied[us.Other()]

	p.generatePawnMoves(ml, us, enemies, occupied)

	for pt := Knight; pt <= King; pt++ {
		pieces := p.Pieces[us][pt]
		for pieces != 0 {
			from := pieces.PopLSB()
			attacks := pieceAttacks(pt, from, occupied) &^ p.Occupied[us]
			for attacks != 0 {
				ml.Add(NewMove(from, attacks.PopLSB()))
			}
		}
	}

	p.generateCastlingMoves(ml, us)
}

func (p *Position) generatePawnMoves(ml *MoveList, us Color, enemies, occupied Bitboard) {
	pawns := p.Pieces[us][Pawn]
	empty := ^occupied

	var push1, push2, attackL, attackR, promoRank Bitboard
	var pushDir int

	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		attackL = pawns.NorthWest() & enemies
		attackR = pawns.NorthEast() & enemies
		promoRank = Rank8
		pushDir = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		attackL = pawns.SouthWest() & enemies
		attackR = pawns.SouthEast() & enemies
		promoRank = Rank1
		pushDir = -8
	}

	// Quiet pushes and captures below the promotion rank; the fromOffset is
	// how far the origin sits behind each destination bit.
	emit := func(targets Bitboard, fromOffset int) {
		quiet := targets &^ promoRank
		for quiet != 0 {
			to := quiet.PopLSB()
			ml.Add(NewMove(Square(int(to)-fromOffset), to))
		}
		promos := targets & promoRank
		for promos != 0 {
			to := promos.PopLSB()
			from := Square(int(to) - fromOffset)
			ml.Add(NewPromotion(from, to, Queen))
			ml.Add(NewPromotion(from, to, Rook))
			ml.Add(NewPromotion(from, to, Bishop))
			ml.Add(NewPromotion(from, to, Knight))
		}
	}

	emit(push1, pushDir)
	emit(attackL, pushDir-1)
	emit(attackR, pushDir+1)

	for push2 != 0 {
		to := push2.PopLSB()
		ml.Add(NewMove(Square(int(to)-2*pushDir), to))
	}

	if p.EnPassant != NoSquare {
		epBB := SquareBB(p.EnPassant)
		var epAttackers Bitboard
		if us == White {
			epAttackers = (epBB.SouthWest() | epBB.SouthEast()) & pawns
		} else {
			epAttackers = (epBB.NorthWest() | epBB.NorthEast()) & pawns
		}
		for epAttackers != 0 {
			ml.Add(NewEnPassant(epAttackers.PopLSB(), p.EnPassant))
		}
	}
}

func (p *Position) generateCastlingMoves(ml *MoveList, us Color) {
	them := us.Other()

	type side struct {
		right       CastlingRights
		kingFrom    Square
		kingTo      Square
		mustBeEmpty Bitboard
		mustBeSafe  [3]Square // king's path, origin included
	}

	var sides [2]side
	if us == White {
		sides = [2]side{
			{WhiteKingSideCastle, E1, G1, SquareBB(F1) | SquareBB(G1), [3]Square{E1, F1, G1}},
			{WhiteQueenSideCastle, E1, C1, SquareBB(B1) | SquareBB(C1) | SquareBB(D1), [3]Square{E1, D1, C1}},
		}
	} else {
		sides = [2]side{
			{BlackKingSideCastle, E8, G8, SquareBB(F8) | SquareBB(G8), [3]Square{E8, F8, G8}},
			{BlackQueenSideCastle, E8, C8, SquareBB(B8) | SquareBB(C8) | SquareBB(D8), [3]Square{E8, D8, C8}},
		}
	}

	for _, s := range sides {
		if p.CastlingRights&s.right == 0 || p.AllOccupied&s.mustBeEmpty != 0 {
			continue
		}
		safe := true
		for _, sq := range s.mustBeSafe {
			if p.IsSquareAttacked(sq, them) {
				safe = false
				break
			}
		}
		if safe {
			ml.Add(NewCastling(s.kingFrom, s.kingTo))
		}
	}
}

func (p *Position) filterLegal(ml *MoveList) *MoveList {
	result := NewMoveList()
	for i := 0; i < ml.Len(); i++ {
		if m := ml.Get(i); p.IsLegal(m) {
			result.Add(m)
		}
	}
	return result
}

// IsLegal reports whether a pseudo-legal move leaves the mover's king safe.
func (p *Position) IsLegal(m Move) bool {
	us := p.SideToMove
	them := us.Other()
	from := m.From()
	ksq := p.KingSquare[us]

	if from == ksq {
		if m.IsCastling() {
			// Path safety was already checked during generation.
			return true
		}
		// King steps: test the destination with the king lifted off, so a
		// slider checking through the origin square still counts.
		occ := p.AllOccupied &^ SquareBB(from)
		return p.AttackersByColor(m.To(), them, occ) == 0
	}

	// Everything else, pins and en passant included: make, inspect, unmake.
	undo := p.MakeMove(m)
	if !undo.Valid {
		return false
	}
	attacked := p.IsSquareAttacked(ksq, them)
	p.UnmakeMove(m, undo)
	return !attacked
}

// MakeMove applies m and returns what UnmakeMove needs to restore the
// position, with Hash and Checkers maintained incrementally.
func (p *Position) MakeMove(m Move) UndoInfo {
	undo := UndoInfo{
		CapturedPiece:  NoPiece,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
		Hash:           p.Hash,
		Checkers:       p.Checkers,
	}

	us := p.SideToMove
	them := us.Other()
	from := m.From()
	to := m.To()
	piece := p.PieceAt(from)

	if piece == NoPiece {
		return undo
	}
	undo.Valid = true
	pt := piece.Type()

	p.Hash ^= zobristSideToMove
	p.Hash ^= zobristCastling[p.CastlingRights]
	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	p.EnPassant = NoSquare

	if m.IsEnPassant() {
		capturedSq := to - 8
		if us == Black {
			capturedSq = to + 8
		}
		undo.CapturedPiece = p.removePiece(capturedSq)
		p.Hash ^= zobristPiece[them][Pawn][capturedSq]
	} else if captured := p.PieceAt(to); captured != NoPiece {
		undo.CapturedPiece = captured
		p.removePiece(to)
		p.Hash ^= zobristPiece[them][captured.Type()][to]
	}

	p.movePiece(from, to)
	p.Hash ^= zobristPiece[us][pt][from]
	p.Hash ^= zobristPiece[us][pt][to]

	if m.IsPromotion() {
		promoPt := m.Promotion()
		p.Pieces[us][Pawn] &^= SquareBB(to)
		p.Pieces[us][promoPt] |= SquareBB(to)
		p.Hash ^= zobristPiece[us][Pawn][to]
		p.Hash ^= zobristPiece[us][promoPt][to]
	}

	if m.IsCastling() {
		rookFrom, rookTo := castlingRookSquares(from, to)
		p.movePiece(rookFrom, rookTo)
		p.Hash ^= zobristPiece[us][Rook][rookFrom]
		p.Hash ^= zobristPiece[us][Rook][rookTo]
	}

	if pt == King {
		if us == White {
			p.CastlingRights &^= WhiteKingSideCastle | WhiteQueenSideCastle
		} else {
			p.CastlingRights &^= BlackKingSideCastle | BlackQueenSideCastle
		}
	}

	// A rook leaving, or anything landing on, a corner kills that side's
	// castling right.
	if from == A1 || to == A1 {
		p.CastlingRights &^= WhiteQueenSideCastle
	}
	if from == H1 || to == H1 {
		p.CastlingRights &^= WhiteKingSideCastle
	}
	if from == A8 || to == A8 {
		p.CastlingRights &^= BlackQueenSideCastle
	}
	if from == H8 || to == H8 {
		p.CastlingRights &^= BlackKingSideCastle
	}
	p.Hash ^= zobristCastling[p.CastlingRights]

	if pt == Pawn && abs(int(to)-int(from)) == 16 {
		epSquare := Square((int(from) + int(to)) / 2)
		p.EnPassant = epSquare
		p.Hash ^= zobristEnPassant[epSquare.File()]
	}

	if pt == Pawn || undo.CapturedPiece != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}
	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = them
	p.UpdateCheckers()

	return undo
}

// castlingRookSquares maps a castling king move to its rook's movement.
func castlingRookSquares(kingFrom, kingTo Square) (rookFrom, rookTo Square) {
	if kingTo > kingFrom {
		return NewSquare(7, kingFrom.Rank()), NewSquare(5, kingFrom.Rank())
	}
	return NewSquare(0, kingFrom.Rank()), NewSquare(3, kingFrom.Rank())
}

// UnmakeMove restores the position captured in undo.
func (p *Position) UnmakeMove(m Move, undo UndoInfo) {
	them := p.SideToMove
	us := them.Other()
	from := m.From()
	to := m.To()

	p.CastlingRights = undo.CastlingRights
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMoveClock
	p.Hash = undo.Hash
	p.Checkers = undo.Checkers
	p.SideToMove = us

	if us == Black {
		p.FullMoveNumber--
	}

	// Demote a promoted piece back to a pawn before walking it home.
	if m.IsPromotion() {
		p.Pieces[us][m.Promotion()] &^= SquareBB(to)
		p.Pieces[us][Pawn] |= SquareBB(to)
	}

	p.movePiece(to, from)

	if m.IsCastling() {
		rookFrom, rookTo := castlingRookSquares(from, to)
		p.movePiece(rookTo, rookFrom)
	}

	if undo.CapturedPiece != NoPiece {
		restoreSq := to
		if m.IsEnPassant() {
			restoreSq = to - 8
			if us == Black {
				restoreSq = to + 8
			}
		}
		p.setPiece(undo.CapturedPiece, restoreSq)
	}
}

// HasLegalMoves reports whether the side to move has any legal move,
// stopping at the first one found.
func (p *Position) HasLegalMoves() bool {
	ml := p.GeneratePseudoLegalMoves()
	for i := 0; i < ml.Len(); i++ {
		if p.IsLegal(ml.Get(i)) {
			return true
		}
	}
	return false
}

// IsCheckmate reports whether the side to move is checkmated.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate reports whether the side to move is stalemated.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}
