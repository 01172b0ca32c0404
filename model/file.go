package model

// Этот файл содержит бинарный формат модели.
// Файл состоит из заголовка, "сложного" блока (gzip + gob: состояния, таблица
// морфем с атрибутами, правила сложных слов, множество конечных состояний)
// и трех "сырых" массивов дерева, которые при загрузке отображаются в память
// через mmap без копирования.

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"unsafe"

	"github.com/RoaringBitmap/roaring"
	"github.com/edsrzf/mmap-go"
)

// EnvModelPath - имя переменной окружения для переопределения пути к модели.
const EnvModelPath = "MORPHOLOGY_MODEL_PATH"

// DefaultModelFile - имя файла модели рядом с исходниками пакета.
const DefaultModelFile = "morphology.mrf"

const (
	formatVersion = 1
	sectionAlign  = 8
)

var fileMagic = [4]byte{'M', 'R', 'F', '1'}

var (
	ErrBadMagic         = errors.New("неверная сигнатура файла модели")
	ErrTruncated        = errors.New("файл модели обрезан или секции выходят за его границы")
	ErrChecksumMismatch = errors.New("контрольная сумма файла модели не совпадает")
)

// Header - заголовок файла модели. Это "карта" файла, по которой
// загрузчик находит секции без копирования.
type Header struct {
	Magic             [4]byte  // Сигнатура "MRF1".
	Version           uint32   // Версия формата.
	ComplexDataOffset int64    // Смещение "сложного" блока.
	ComplexDataLength int64    // Длина "сложного" блока в байтах.
	NodesOffset       int64    // Смещение массива узлов.
	NodesCount        int64    // Количество узлов.
	EdgesOffset       int64    // Смещение массива ребер.
	EdgesCount        int64    // Количество ребер.
	PayloadsOffset    int64    // Смещение массива payload-ов.
	PayloadsCount     int64    // Количество payload-ов.
	Checksum          [32]byte // SHA-256 всего, что идет после заголовка.
}

var headerSize = int64(binary.Size(Header{}))

// complexData - все, что неэффективно хранить в "сыром" виде.
type complexData struct {
	States    []string
	Morphemes []morphemeRecord
	Start     uint32
	Terminal  []byte // Сериализованный roaring.Bitmap.
	Compound  map[uint32]uint32
}

// littleEndianHost - можно ли отдавать mmap-область как срезы структур напрямую.
var littleEndianHost = binary.NativeEndian.Uint16([]byte{1, 0}) == 1

// --- СОХРАНЕНИЕ ---

// Encode записывает модель в w.
func (l *Lexicon) Encode(w io.Writer) error {
	terminal, err := l.terminal.MarshalBinary()
	if err != nil {
		return fmt.Errorf("ошибка сериализации конечных состояний: %w", err)
	}
	compound := make(map[uint32]uint32, len(l.compound))
	for from, restart := range l.compound {
		compound[uint32(from)] = uint32(restart)
	}

	var raw bytes.Buffer
	cd := complexData{
		States:    l.states,
		Morphemes: l.morphemes,
		Start:     uint32(l.start),
		Terminal:  terminal,
		Compound:  compound,
	}
	if err := gob.NewEncoder(&raw).Encode(&cd); err != nil {
		return fmt.Errorf("ошибка gob-кодирования: %w", err)
	}

	// Тело файла собирается целиком в памяти: контрольная сумма нужна в заголовке.
	var body bytes.Buffer
	gz := gzip.NewWriter(&body)
	if _, err := gz.Write(raw.Bytes()); err != nil {
		return fmt.Errorf("ошибка сжатия: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия gzip.Writer: %w", err)
	}

	h := Header{
		Magic:             fileMagic,
		Version:           formatVersion,
		ComplexDataOffset: headerSize,
		ComplexDataLength: int64(body.Len()),
	}

	h.NodesOffset = alignBody(&body)
	h.NodesCount = int64(len(l.nodes))
	if err := binary.Write(&body, binary.LittleEndian, l.nodes); err != nil {
		return fmt.Errorf("ошибка записи узлов: %w", err)
	}
	h.EdgesOffset = alignBody(&body)
	h.EdgesCount = int64(len(l.edges))
	if err := binary.Write(&body, binary.LittleEndian, l.edges); err != nil {
		return fmt.Errorf("ошибка записи ребер: %w", err)
	}
	h.PayloadsOffset = alignBody(&body)
	h.PayloadsCount = int64(len(l.payloads))
	if err := binary.Write(&body, binary.LittleEndian, l.payloads); err != nil {
		return fmt.Errorf("ошибка записи payload-ов: %w", err)
	}
	h.Checksum = sha256.Sum256(body.Bytes())

	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("ошибка записи заголовка: %w", err)
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		return fmt.Errorf("ошибка записи тела: %w", err)
	}
	return nil
}

// Save атомарно записывает модель в файл: сначала во временный файл
// в той же директории, затем переименовывает.
func (l *Lexicon) Save(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if err := l.Encode(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("ошибка fsync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("ошибка переименования %s → %s: %w", tmpPath, path, err)
	}
	success = true
	return nil
}

// alignBody дополняет тело нулями до границы секции и возвращает
// абсолютное смещение следующей секции в файле.
func alignBody(body *bytes.Buffer) int64 {
	for (headerSize+int64(body.Len()))%sectionAlign != 0 {
		body.WriteByte(0)
	}
	return headerSize + int64(body.Len())
}

// --- ЗАГРУЗКА ---

// OpenDefault загружает модель по пути из EnvModelPath, а если переменная
// не задана - файл DefaultModelFile рядом с исходниками пакета.
func OpenDefault() (*Lexicon, error) {
	if path := os.Getenv(EnvModelPath); path != "" {
		return Open(path)
	}

	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return nil, errors.New("не удалось определить путь к пакету model")
	}
	path := filepath.Join(filepath.Dir(currentFilePath), DefaultModelFile)
	lex, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w (укажите путь в переменной окружения %s)", err, EnvModelPath)
	}
	return lex, nil
}

// Open отображает файл модели в память и проверяет его.
// Если файла нет, но рядом лежат его части (path.aa, path.ab, ...),
// они сначала объединяются в path. Ход объединения пишется в slog.Default().
func Open(path string) (*Lexicon, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := mergeParts(path); err != nil {
			return nil, err
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла модели: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения сведений о файле модели: %w", err)
	}
	if info.Size() < headerSize {
		return nil, fmt.Errorf("%s: %w", path, ErrTruncated)
	}

	// Файл не копируется в ОЗУ, ОС подгружает нужные страницы по мере обращения.
	mmapFile, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("ошибка mmap.Map: %w", err)
	}

	lex, err := decode(mmapFile)
	if err != nil {
		_ = mmapFile.Unmap()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	lex.mmapFile = mmapFile
	return lex, nil
}

// decode разбирает образ файла. Массивы дерева остаются срезами data.
func decode(data []byte) (*Lexicon, error) {
	if int64(len(data)) < headerSize {
		return nil, ErrTruncated
	}

	var h Header
	if err := binary.Read(bytes.NewReader(data[:headerSize]), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("ошибка чтения заголовка: %w", err)
	}
	if h.Magic != fileMagic {
		return nil, ErrBadMagic
	}
	if h.Version != formatVersion {
		return nil, fmt.Errorf("%w: версия формата %d не поддерживается", ErrInvalidModel, h.Version)
	}
	if sha256.Sum256(data[headerSize:]) != h.Checksum {
		return nil, ErrChecksumMismatch
	}

	// Распаковываем и декодируем "сложный" блок.
	if h.ComplexDataOffset < headerSize || h.ComplexDataLength < 0 ||
		h.ComplexDataLength > int64(len(data))-h.ComplexDataOffset {
		return nil, ErrTruncated
	}
	block := data[h.ComplexDataOffset : h.ComplexDataOffset+h.ComplexDataLength]
	gzipReader, err := gzip.NewReader(bytes.NewReader(block))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания gzip.Reader: %w", err)
	}
	var cd complexData
	if err := gob.NewDecoder(gzipReader).Decode(&cd); err != nil {
		return nil, fmt.Errorf("ошибка gob-декодирования: %w", err)
	}
	if err := gzipReader.Close(); err != nil {
		return nil, fmt.Errorf("ошибка закрытия gzip.Reader: %w", err)
	}

	terminal := roaring.New()
	if err := terminal.UnmarshalBinary(cd.Terminal); err != nil {
		return nil, fmt.Errorf("ошибка чтения конечных состояний: %w", err)
	}

	// "Виртуальные" срезы поверх data.
	nodes, err := readSection[FlatNode](data, h.NodesOffset, h.NodesCount)
	if err != nil {
		return nil, fmt.Errorf("узлы: %w", err)
	}
	edges, err := readSection[FlatEdge](data, h.EdgesOffset, h.EdgesCount)
	if err != nil {
		return nil, fmt.Errorf("ребра: %w", err)
	}
	payloads, err := readSection[FlatEntry](data, h.PayloadsOffset, h.PayloadsCount)
	if err != nil {
		return nil, fmt.Errorf("payload-ы: %w", err)
	}

	compound := make(map[State]State, len(cd.Compound))
	for from, restart := range cd.Compound {
		compound[State(from)] = State(restart)
	}

	l := &Lexicon{
		states:    cd.States,
		morphemes: cd.Morphemes,
		start:     State(cd.Start),
		terminal:  terminal,
		compound:  compound,
		nodes:     nodes,
		edges:     edges,
		payloads:  payloads,
	}
	if err := l.validate(); err != nil {
		return nil, err
	}
	l.reach = computeReach(nodes, edges, payloads)
	l.keys = collectKeys(l.morphemes)
	return l, nil
}

// validate проверяет ссылки между секциями, чтобы ошибки данных
// обнаруживались при загрузке, а не во время анализа.
func (l *Lexicon) validate() error {
	numStates := uint32(len(l.states))
	if numStates == 0 || uint32(l.start) >= numStates {
		return fmt.Errorf("%w: нет начального состояния", ErrInvalidModel)
	}
	if len(l.nodes) == 0 {
		return fmt.Errorf("%w: пустое дерево морфем", ErrInvalidModel)
	}
	if !l.terminal.IsEmpty() && l.terminal.Maximum() >= numStates {
		return fmt.Errorf("%w: конечное состояние вне диапазона", ErrInvalidModel)
	}
	for from, restart := range l.compound {
		if uint32(from) >= numStates || uint32(restart) >= numStates {
			return fmt.Errorf("%w: правило сложного слова %d → %d вне диапазона", ErrInvalidModel, from, restart)
		}
	}

	numNodes := uint64(len(l.nodes))
	for i, n := range l.nodes {
		if uint64(n.PayloadIdx)+uint64(n.PayloadLen) > uint64(len(l.payloads)) ||
			uint64(n.EdgesIdx)+uint64(n.EdgesLen) > uint64(len(l.edges)) {
			return fmt.Errorf("%w: узел %d ссылается за пределы массивов", ErrInvalidModel, i)
		}
		edges := l.edges[n.EdgesIdx : n.EdgesIdx+n.EdgesLen]
		for j, edge := range edges {
			// Потомок всегда имеет больший ID: это исключает циклы.
			if uint64(edge.NodeID) <= uint64(i) || uint64(edge.NodeID) >= numNodes {
				return fmt.Errorf("%w: ребро узла %d ведет в узел %d", ErrInvalidModel, i, edge.NodeID)
			}
			// findChild ищет ребро бинарным поиском.
			if j > 0 && edges[j-1].Char >= edge.Char {
				return fmt.Errorf("%w: ребра узла %d не упорядочены по символу", ErrInvalidModel, i)
			}
		}
	}
	froms := make([][]State, len(l.morphemes))
	for i, entry := range l.payloads {
		if int(entry.MorphemeID) >= len(l.morphemes) || entry.From >= numStates || entry.Next >= numStates {
			return fmt.Errorf("%w: payload %d вне диапазона", ErrInvalidModel, i)
		}
		froms[entry.MorphemeID] = append(froms[entry.MorphemeID], State(entry.From))
	}

	errs := checkRules(l.morphemes, partStartStates(l.start, l.compound), func(id int) []State {
		return froms[id]
	})
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidModel, errors.Join(errs...))
	}
	return nil
}

// readSection возвращает срез структур поверх data[off:].
// На little-endian машинах данные не копируются.
func readSection[T any](data []byte, off, count int64) ([]T, error) {
	var zero T
	size := int64(binary.Size(zero))
	if off < headerSize || off%sectionAlign != 0 || count < 0 || off > int64(len(data)) ||
		count > (int64(len(data))-off)/size {
		return nil, ErrTruncated
	}
	if count == 0 {
		return nil, nil
	}
	raw := data[off : off+count*size]
	if littleEndianHost && int64(unsafe.Sizeof(zero)) == size {
		return bytesToSlice[T](raw), nil
	}
	out := make([]T, count)
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, out); err != nil {
		return nil, err
	}
	return out, nil
}

// bytesToSlice - "небезопасная" функция, которая создает срез,
// указывающий на область байт, без копирования самих данных.
func bytesToSlice[T any](b []byte) []T {
	if len(b) == 0 {
		return nil
	}
	var t T
	size := int(unsafe.Sizeof(t))
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), len(b)/size)
}

// splitSuffix - суффиксы, которые дает split: aa ... yz, затем zaaa, zaab и т.д.
// Посторонние файлы вроде model.mrf.bak в модель не попадают.
var splitSuffix = regexp.MustCompile(`^(?:[a-y][a-z]|z[a-z]{3,})$`)

// mergeParts объединяет части файла модели (path.aa, path.ab, ...) в path.
// Части создаются командой `split -b 50m model.mrf model.mrf.`
// и сортируются лексикографически.
func mergeParts(path string) error {
	dir, prefix := filepath.Dir(path), filepath.Base(path)+"."
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("ошибка при поиске частей модели: %w", err)
	}

	var partFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !splitSuffix.MatchString(name[len(prefix):]) {
			continue
		}
		partFiles = append(partFiles, filepath.Join(dir, name))
	}
	if len(partFiles) == 0 {
		return fmt.Errorf("файл модели %s не найден, частей с префиксом %q тоже нет: %w", path, prefix, fs.ErrNotExist)
	}
	sort.Strings(partFiles)

	slog.Info("объединение частей модели", "path", path, "parts", len(partFiles))

	outFile, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("ошибка создания выходного файла: %w", err)
	}
	tmpPath := outFile.Name()
	success := false
	defer func() {
		if !success {
			outFile.Close()
			os.Remove(tmpPath)
		}
	}()

	for _, partPath := range partFiles {
		inFile, err := os.Open(partPath)
		if err != nil {
			return fmt.Errorf("ошибка открытия части файла %s: %w", partPath, err)
		}
		_, err = io.Copy(outFile, inFile)
		inFile.Close()
		if err != nil {
			return fmt.Errorf("ошибка копирования данных из %s: %w", partPath, err)
		}
		slog.Debug("часть модели добавлена", "part", filepath.Base(partPath))
	}

	if err := outFile.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("ошибка переименования %s → %s: %w", tmpPath, path, err)
	}
	success = true
	slog.Info("части модели объединены", "path", path)
	return nil
}
