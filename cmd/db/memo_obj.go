package db

type MemoObjType = byte

const (
	ObjDiary MemoObjType = iota
	ObjList
	ObjQueue
	ObjSet
)

var objTypeNames = map[MemoObjType]string{
	ObjDiary: "diary",
	ObjList:  "list",
	ObjQueue: "queue",
	ObjSet:   "set",
}

type MemoObj struct {
	Kind  MemoObjType
	Diary *List[Entry]
	List  *List[string]
	Queue *Queue
	Set   *Set
}

func (d *Database) newDiaryObj() *MemoObj {
	return &MemoObj{Kind: ObjDiary, Diary: NewList[Entry](d.linkage)}
}

func (d *Database) newListObj() *MemoObj {
	return &MemoObj{Kind: ObjList, List: NewList[string](Doubly)}
}

func (d *Database) newQueueObj() *MemoObj {
	return &MemoObj{Kind: ObjQueue, Queue: NewQueue()}
}

func (d *Database) newSetObj() *MemoObj {
	return &MemoObj{Kind: ObjSet, Set: NewSet()}
}

func (obj *MemoObj) TypeName() string {
	return objTypeNames[obj.Kind]
}
